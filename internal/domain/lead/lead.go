package lead

import (
	"context"
	"time"
)

// Status represents where a lead is in the pipeline
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConverted Status = "converted"
)

// Statuses lists the pipeline states in display order
var Statuses = []Status{StatusNew, StatusContacted, StatusConverted}

// IsValid reports whether s is one of the pipeline states.
// Only clients enforce this; the store accepts any string.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusConverted:
		return true
	}
	return false
}

// Lead is a prospective-customer record
type Lead struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null"`
	Source    string    `json:"source" gorm:"type:varchar(255)"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a lead ready for insertion. ID and CreatedAt are assigned by the store.
func NewLead(name, email, source string) *Lead {
	return &Lead{
		Name:   name,
		Email:  email,
		Source: source,
		Status: StatusNew,
		Notes:  "",
	}
}

// Repository persists leads. Each call is a single statement.
type Repository interface {
	// FindAll returns every lead, most recent first
	FindAll(ctx context.Context) ([]Lead, error)
	// Create inserts the lead and fills in its ID and CreatedAt
	Create(ctx context.Context, l *Lead) error
	// UpdateStatusAndNotes overwrites both columns; unknown ids are not an error
	UpdateStatusAndNotes(ctx context.Context, id int64, status Status, notes string) error
	// Delete removes the lead; unknown ids are not an error
	Delete(ctx context.Context, id int64) error
}
