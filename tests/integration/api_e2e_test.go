//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	applead "github.com/minicrm/backend/internal/application/lead"
	"github.com/minicrm/backend/internal/application/identity"
	"github.com/minicrm/backend/internal/dashboard"
	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/cache"
	"github.com/minicrm/backend/internal/infrastructure/config"
	"github.com/minicrm/backend/internal/infrastructure/persistence"
	"github.com/minicrm/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAPIServer serves the full API over the containerised database
func newAPIServer(t *testing.T, tdb *TestDB, limiter cache.RateLimitStore) *httptest.Server {
	t.Helper()
	log := zaptest.NewLogger(t)

	cfg := &config.Config{
		App: config.AppConfig{Name: "minicrm-integration", Env: "development"},
		Session: config.SessionConfig{
			Secret:     "integration-secret-key-at-least-32",
			Expiration: time.Hour,
			Issuer:     "minicrm-integration",
		},
		HTTP: config.HTTPConfig{MaxBodySize: 1 << 20},
	}

	sessions := auth.NewSessionService(cfg.Session)
	engine := router.NewEngine(cfg, router.Dependencies{
		Leads: applead.NewService(persistence.NewGormLeadRepository(tdb.DB), log),
		Auth: identity.NewAuthService(
			identity.Credentials{Username: "admin", PasswordHash: config.DefaultAdminPasswordHash},
			auth.NewHasher(0), sessions, log),
		Sessions:     sessions,
		DB:           tdb.Database,
		LoginLimiter: limiter,
		Logger:       log,
	})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_LeadLifecycle_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	srv := newAPIServer(t, tdb, nil)
	client := dashboard.NewClient(srv.URL)
	ctx := context.Background()

	id, err := client.CreateLead(ctx, "Ann", "a@x.com", "LinkedIn")
	require.NoError(t, err)

	leads, err := client.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, id, leads[0].ID)
	assert.Equal(t, lead.StatusNew, leads[0].Status)

	require.NoError(t, client.UpdateLead(ctx, id, lead.StatusContacted, "called"))

	leads, err = client.ListLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, lead.StatusContacted, leads[0].Status)
	assert.Equal(t, "called", leads[0].Notes)

	require.NoError(t, client.DeleteLead(ctx, id))
	require.NoError(t, client.DeleteLead(ctx, id))

	leads, err = client.ListLeads(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_LegacyAdminLogin_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	srv := newAPIServer(t, tdb, nil)
	client := dashboard.NewClient(srv.URL)
	ctx := context.Background()

	session := dashboard.NewSession(client, client)
	require.Error(t, session.Login(ctx, "admin", "wrong"))
	assert.Equal(t, "Invalid username or password", session.LastError())

	require.NoError(t, session.Login(ctx, "admin", "admin@123"))
	assert.True(t, session.LoggedIn())
}

func TestAPI_LoginRateLimit_Redis(t *testing.T) {
	tdb := NewTestDB(t)
	redisCfg := newTestRedis(t)

	store, err := cache.NewRateLimiterFactory(redisCfg, cache.WithInMemoryFallback(false)).CreateStore(2, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := newAPIServer(t, tdb, store)
	client := dashboard.NewClient(srv.URL)
	ctx := context.Background()

	// successful logins are not charged
	for range 4 {
		_, err := client.Login(ctx, "admin", "admin@123")
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		_, err := client.Login(ctx, "admin", "wrong")
		var apiErr *dashboard.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	}

	_, err = client.Login(ctx, "admin", "admin@123")
	var apiErr *dashboard.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	// lead routes are not limited
	_, err = client.ListLeads(ctx)
	assert.NoError(t, err)
}
