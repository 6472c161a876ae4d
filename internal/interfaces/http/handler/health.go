package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/infrastructure/persistence"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
)

// Pinger checks that a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolStatter reports connection pool usage. Pingers that implement it get
// their pool stats added to the health response.
type PoolStatter interface {
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: 2 * time.Second,
	}
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Reports liveness, database reachability and connection pool usage
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC(),
		Database: "connected",
	}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	} else if ps, ok := h.db.(PoolStatter); ok {
		if stats, err := ps.Stats(); err == nil {
			resp.Pool = &dto.PoolStats{
				MaxOpenConnections: stats.MaxOpenConnections,
				OpenConnections:    stats.OpenConnections,
				InUse:              stats.InUse,
				Idle:               stats.Idle,
				WaitCount:          stats.WaitCount,
				WaitDurationMs:     stats.WaitDuration.Milliseconds(),
			}
		}
	}
	c.JSON(status, resp)
}
