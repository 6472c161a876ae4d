package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/minicrm/backend/internal/domain/lead"
)

type updateCall struct {
	ID     int64
	Status lead.Status
	Notes  string
}

// fakeAPI is an in-memory LeadAPI that records updates
type fakeAPI struct {
	mu        sync.Mutex
	leads     []lead.Lead
	nextID    int64
	updates   []updateCall
	lists     int
	err       error
	block     chan struct{}
	listErr   error
	deleteErr error
}

func newFakeAPI(leads ...lead.Lead) *fakeAPI {
	f := &fakeAPI{nextID: 100}
	f.leads = append(f.leads, leads...)
	return f
}

func (f *fakeAPI) ListLeads(context.Context) ([]lead.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]lead.Lead, len(f.leads))
	copy(out, f.leads)
	return out, nil
}

func (f *fakeAPI) CreateLead(_ context.Context, name, email, source string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	l := lead.Lead{ID: f.nextID, Name: name, Email: email, Source: source, Status: lead.StatusNew, CreatedAt: time.Now()}
	f.leads = append([]lead.Lead{l}, f.leads...)
	return l.ID, nil
}

func (f *fakeAPI) UpdateLead(_ context.Context, id int64, status lead.Status, notes string) error {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{ID: id, Status: status, Notes: notes})
	if f.err != nil {
		return f.err
	}
	for i := range f.leads {
		if f.leads[i].ID == id {
			f.leads[i].Status = status
			f.leads[i].Notes = notes
		}
	}
	return nil
}

func (f *fakeAPI) DeleteLead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.leads {
		if f.leads[i].ID == id {
			f.leads = append(f.leads[:i], f.leads[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) Updates() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]updateCall, len(f.updates))
	copy(out, f.updates)
	return out
}

func (f *fakeAPI) Lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
