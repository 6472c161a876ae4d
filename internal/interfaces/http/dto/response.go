package dto

import (
	"time"

	"github.com/minicrm/backend/internal/domain/lead"
)

// MessageResponse is returned by mutations without a payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a fixed client message and, for store failures, the raw cause
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CreateLeadResponse is returned after a lead has been added
type CreateLeadResponse struct {
	Message string `json:"message"`
	LeadID  int64  `json:"leadId"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Message   string    `json:"message"`
	LoggedIn  bool      `json:"loggedIn"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// HealthResponse reports service and database health
type HealthResponse struct {
	Status   string     `json:"status"`
	Time     time.Time  `json:"time"`
	Database string     `json:"database"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// PoolStats is the database connection pool usage
type PoolStats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	WaitDurationMs     int64 `json:"wait_duration_ms"`
}

// LeadList is the body of GET /api/leads
type LeadList []lead.Lead

// Success messages
const (
	MsgLeadAdded    = "Lead added successfully"
	MsgLeadUpdated  = "Lead updated successfully"
	MsgLeadDeleted  = "Lead deleted successfully"
	MsgLoginSuccess = "Login successful"
)

// MsgBodyTooLarge answers a body over the configured size limit
const MsgBodyTooLarge = "Request body too large"
