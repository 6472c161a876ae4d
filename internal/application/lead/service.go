package lead

import (
	"context"
	"errors"
	"strings"

	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/minicrm/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Messages reported to clients
const (
	MsgFetchFailed  = "Error fetching leads"
	MsgCreateFailed = "Error adding lead"
	MsgUpdateFailed = "Error updating lead"
	MsgDeleteFailed = "Error deleting lead"
)

// Service exposes the lead store operations. Every call is a single statement.
type Service struct {
	repo   lead.Repository
	logger *zap.Logger
}

// NewService creates a new lead service
func NewService(repo lead.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns all leads, most recent first. An empty store yields an empty slice.
func (s *Service) List(ctx context.Context) ([]lead.Lead, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lead", "list")
	defer span.End()

	leads, err := s.repo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to fetch leads", zap.Error(err))
		return nil, shared.NewStoreError(MsgFetchFailed, err)
	}
	span.SetAttributes(attribute.Int("lead.count", len(leads)))
	return leads, nil
}

// Create inserts a lead with status new and empty notes and returns its id.
// Name and email are required; nothing else is validated.
func (s *Service) Create(ctx context.Context, input CreateLeadInput) (int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lead", "create")
	defer span.End()

	if err := requireField("name", input.Name); err != nil {
		telemetry.RecordError(span, err)
		return 0, shared.NewStoreError(MsgCreateFailed, err)
	}
	if err := requireField("email", input.Email); err != nil {
		telemetry.RecordError(span, err)
		return 0, shared.NewStoreError(MsgCreateFailed, err)
	}

	l := lead.NewLead(*input.Name, *input.Email, deref(input.Source))
	if err := s.repo.Create(ctx, l); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to add lead", zap.Error(err))
		return 0, shared.NewStoreError(MsgCreateFailed, err)
	}

	span.SetAttributes(attribute.Int64("lead.id", l.ID))
	s.logger.Info("Lead added", zap.Int64("lead_id", l.ID))
	return l.ID, nil
}

// Update overwrites status and notes of the lead. Unknown ids are not an error.
// A missing status is rejected like the NOT NULL column would; missing notes become empty.
func (s *Service) Update(ctx context.Context, id int64, input UpdateLeadInput) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "lead", "update", attribute.Int64("lead.id", id))
	defer span.End()

	if input.Status == nil {
		err := errors.New("status cannot be null")
		telemetry.RecordError(span, err)
		return shared.NewStoreError(MsgUpdateFailed, err)
	}

	if err := s.repo.UpdateStatusAndNotes(ctx, id, lead.Status(*input.Status), deref(input.Notes)); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to update lead", zap.Int64("lead_id", id), zap.Error(err))
		return shared.NewStoreError(MsgUpdateFailed, err)
	}
	return nil
}

// Delete removes the lead. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "lead", "delete", attribute.Int64("lead.id", id))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to delete lead", zap.Int64("lead_id", id), zap.Error(err))
		return shared.NewStoreError(MsgDeleteFailed, err)
	}
	return nil
}

func requireField(name string, value *string) error {
	if value == nil {
		return errors.New(name + " cannot be null")
	}
	if strings.TrimSpace(*value) == "" {
		return errors.New(name + " cannot be empty")
	}
	return nil
}
