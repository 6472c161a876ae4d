package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/minicrm/backend/internal/domain/lead"
	"go.uber.org/zap"
)

// Default timings of the dashboard
const (
	DefaultNotesDelay  = time.Second
	DefaultSavingReset = 500 * time.Millisecond
)

// FilterAll disables the status filter
const FilterAll = "all"

// ErrUnknownLead is returned for ids that are not in the fetched list
var ErrUnknownLead = errors.New("lead not in list")

// LeadAPI is the subset of the server API the dashboard uses
type LeadAPI interface {
	ListLeads(ctx context.Context) ([]lead.Lead, error)
	CreateLead(ctx context.Context, name, email, source string) (int64, error)
	UpdateLead(ctx context.Context, id int64, status lead.Status, notes string) error
	DeleteLead(ctx context.Context, id int64) error
}

// NewLeadForm holds the fields entered to add a lead
type NewLeadForm struct {
	Name   string `validate:"required"`
	Email  string `validate:"required"`
	Source string
}

type statusChange struct {
	Status string `validate:"required,oneof=new contacted converted"`
}

type statusFilter struct {
	Status string `validate:"required,oneof=all new contacted converted"`
}

// Option configures a Dashboard
type Option func(*Dashboard)

// WithNotesDelay sets the quiet period before a notes edit is sent
func WithNotesDelay(d time.Duration) Option {
	return func(db *Dashboard) {
		db.notesDelay = d
	}
}

// WithSavingReset sets how long the saving indicator stays on after a request settles
func WithSavingReset(d time.Duration) Option {
	return func(db *Dashboard) {
		db.savingReset = d
	}
}

// WithLogger sets the logger used for failures
func WithLogger(logger *zap.Logger) Option {
	return func(db *Dashboard) {
		db.logger = logger
	}
}

// Dashboard keeps a local copy of the lead list and issues mutations against the API.
// The server owns the data; local state mirrors it.
type Dashboard struct {
	api         LeadAPI
	logger      *zap.Logger
	validate    *validator.Validate
	debouncer   *Debouncer
	notesDelay  time.Duration
	savingReset time.Duration

	mu     sync.Mutex
	leads  []lead.Lead
	search string
	status string
	saving map[int64]int
	// notes typed locally that the server has not confirmed yet
	unsent map[int64]string
}

// New creates a dashboard. Call Load to fetch the list.
func New(api LeadAPI, opts ...Option) *Dashboard {
	d := &Dashboard{
		api:         api,
		logger:      zap.NewNop(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		notesDelay:  DefaultNotesDelay,
		savingReset: DefaultSavingReset,
		leads:       []lead.Lead{},
		status:      FilterAll,
		saving:      make(map[int64]int),
		unsent:      make(map[int64]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.debouncer = NewDebouncer(d.notesDelay)
	return d
}

// Load fetches the full list and replaces local state. Notes edits that are
// still waiting or in flight are kept over the fetched values.
func (d *Dashboard) Load(ctx context.Context) error {
	leads, err := d.api.ListLeads(ctx)
	if err != nil {
		d.logger.Error("Error fetching leads", zap.Error(err))
		return err
	}

	d.mu.Lock()
	d.leads = leads
	for id, notes := range d.unsent {
		if idx := d.indexOf(id); idx >= 0 {
			d.leads[idx].Notes = notes
		}
	}
	d.mu.Unlock()
	return nil
}

// Create adds a lead and re-fetches the list
func (d *Dashboard) Create(ctx context.Context, form NewLeadForm) (int64, error) {
	if err := d.validate.Struct(form); err != nil {
		return 0, fmt.Errorf("invalid lead: %w", err)
	}

	id, err := d.api.CreateLead(ctx, form.Name, form.Email, form.Source)
	if err != nil {
		d.logger.Error("Error adding lead", zap.Error(err))
		return 0, err
	}
	return id, d.Load(ctx)
}

// SetStatus sends the new status with the lead's current notes and patches the
// local record once the server accepted it
func (d *Dashboard) SetStatus(ctx context.Context, id int64, status lead.Status) error {
	if err := d.validate.Struct(statusChange{Status: string(status)}); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}

	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.Unlock()
		return ErrUnknownLead
	}
	notes := d.leads[idx].Notes
	d.mu.Unlock()

	if err := d.update(ctx, id, status, notes); err != nil {
		return err
	}

	d.mu.Lock()
	if i := d.indexOf(id); i >= 0 {
		d.leads[i].Status = status
	}
	d.mu.Unlock()
	return nil
}

// EditNotes changes the local notes at once and sends them after the notes delay
// passed without another edit of the same lead. The request carries the typed
// notes and the lead's status as it is when the request fires.
func (d *Dashboard) EditNotes(id int64, notes string) error {
	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.Unlock()
		return ErrUnknownLead
	}
	d.leads[idx].Notes = notes
	d.unsent[id] = notes
	d.mu.Unlock()

	d.debouncer.Trigger(notesKey(id), func() error {
		return d.sendNotes(id, notes)
	})
	return nil
}

func (d *Dashboard) sendNotes(id int64, notes string) error {
	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.forgetUnsent(id, notes)
		d.mu.Unlock()
		return fmt.Errorf("send notes of lead %d: %w", id, ErrUnknownLead)
	}
	status := d.leads[idx].Status
	d.mu.Unlock()

	err := d.update(context.Background(), id, status, notes)

	d.mu.Lock()
	d.forgetUnsent(id, notes)
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("send notes of lead %d: %w", id, err)
	}
	return nil
}

// forgetUnsent drops the unsent entry unless a newer edit replaced it. Callers hold d.mu.
func (d *Dashboard) forgetUnsent(id int64, notes string) {
	if cur, ok := d.unsent[id]; ok && cur == notes {
		delete(d.unsent, id)
	}
}

// Delete removes a lead, drops its pending notes edit and re-fetches the list
func (d *Dashboard) Delete(ctx context.Context, id int64) error {
	d.debouncer.Cancel(notesKey(id))
	d.mu.Lock()
	delete(d.unsent, id)
	d.mu.Unlock()

	if err := d.api.DeleteLead(ctx, id); err != nil {
		d.logger.Error("Error deleting lead", zap.Int64("lead_id", id), zap.Error(err))
		return err
	}
	return d.Load(ctx)
}

func (d *Dashboard) update(ctx context.Context, id int64, status lead.Status, notes string) error {
	d.startSaving(id)
	defer d.settleSaving(id)

	if err := d.api.UpdateLead(ctx, id, status, notes); err != nil {
		d.logger.Error("Error updating lead", zap.Int64("lead_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (d *Dashboard) startSaving(id int64) {
	d.mu.Lock()
	d.saving[id]++
	d.mu.Unlock()
}

// settleSaving clears the indicator after the reset delay, whatever the outcome
func (d *Dashboard) settleSaving(id int64) {
	time.AfterFunc(d.savingReset, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.saving[id] <= 1 {
			delete(d.saving, id)
			return
		}
		d.saving[id]--
	})
}

// Saving reports whether an update of the lead is in flight or just settled
func (d *Dashboard) Saving(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saving[id] > 0
}

// NotesPending reports whether a notes edit is waiting to be sent
func (d *Dashboard) NotesPending(id int64) bool {
	return d.debouncer.IsPending(notesKey(id))
}

// SetSearch sets the search text. It never triggers a request.
func (d *Dashboard) SetSearch(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = text
}

// SetStatusFilter restricts Visible to one status, or FilterAll
func (d *Dashboard) SetStatusFilter(status string) error {
	if err := d.validate.Struct(statusFilter{Status: status}); err != nil {
		return fmt.Errorf("invalid status filter: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
	return nil
}

// Leads returns a copy of the fetched list
func (d *Dashboard) Leads() []lead.Lead {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]lead.Lead, len(d.leads))
	copy(out, d.leads)
	return out
}

// Visible returns the fetched leads matching the search text and status filter.
// The search is a case-insensitive substring match over name, email and source.
func (d *Dashboard) Visible() []lead.Lead {
	d.mu.Lock()
	defer d.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(d.search))
	out := make([]lead.Lead, 0, len(d.leads))
	for _, l := range d.leads {
		if d.status != FilterAll && string(l.Status) != d.status {
			continue
		}
		if needle != "" && !matches(l, needle) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Flush sends pending notes edits now and returns the failures of those requests
func (d *Dashboard) Flush() error {
	return d.debouncer.Flush()
}

// Close discards pending notes edits
func (d *Dashboard) Close() {
	d.debouncer.Stop()
}

func matches(l lead.Lead, needle string) bool {
	return strings.Contains(strings.ToLower(l.Name), needle) ||
		strings.Contains(strings.ToLower(l.Email), needle) ||
		strings.Contains(strings.ToLower(l.Source), needle)
}

func (d *Dashboard) indexOf(id int64) int {
	for i := range d.leads {
		if d.leads[i].ID == id {
			return i
		}
	}
	return -1
}

func notesKey(id int64) string {
	return "notes:" + strconv.FormatInt(id, 10)
}
