package persistence

import (
	"context"

	"github.com/minicrm/backend/internal/domain/lead"
	"gorm.io/gorm"
)

// GormLeadRepository implements lead.Repository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindAll returns every lead, newest first. Ties on created_at fall back to id.
func (r *GormLeadRepository) FindAll(ctx context.Context) ([]lead.Lead, error) {
	leads := make([]lead.Lead, 0)
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

// Create inserts l and fills in its ID and CreatedAt
func (r *GormLeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// UpdateStatusAndNotes overwrites status and notes. Zero rows affected is not an error.
func (r *GormLeadRepository) UpdateStatusAndNotes(ctx context.Context, id int64, status lead.Status, notes string) error {
	return r.db.WithContext(ctx).
		Model(&lead.Lead{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": string(status),
			"notes":  notes,
		}).Error
}

// Delete removes the lead. Zero rows affected is not an error.
func (r *GormLeadRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&lead.Lead{}).Error
}

var _ lead.Repository = (*GormLeadRepository)(nil)
