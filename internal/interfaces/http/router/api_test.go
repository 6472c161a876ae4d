package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	applead "github.com/minicrm/backend/internal/application/lead"
	"github.com/minicrm/backend/internal/application/identity"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/cache"
	"github.com/minicrm/backend/internal/infrastructure/config"
	"github.com/minicrm/backend/internal/infrastructure/persistence"
	"github.com/minicrm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Secret:     "test-secret-key-at-least-32-chars",
			Expiration: time.Hour,
			Issuer:     "minicrm-test",
		},
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 20,
			CORSAllowOrigins: []string{"http://localhost:3000"},
			CORSAllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowHeaders: []string{"Content-Type", "Authorization"},
		},
	}
}

func testDependencies(t *testing.T, cfg *config.Config) Dependencies {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("admin@123")
	require.NoError(t, err)
	sessions := auth.NewSessionService(cfg.Session)

	return Dependencies{
		Leads:    applead.NewService(persistence.NewGormLeadRepository(db.DB), zap.NewNop()),
		Auth:     identity.NewAuthService(identity.Credentials{Username: "admin", PasswordHash: hash}, hasher, sessions, zap.NewNop()),
		Sessions: sessions,
		DB:       db,
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, limiter cache.RateLimitStore) *gin.Engine {
	t.Helper()
	deps := testDependencies(t, cfg)
	deps.LoginLimiter = limiter
	return NewEngine(cfg, deps)
}

func send(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_OpenAccess(t *testing.T) {
	engine := newTestEngine(t, testConfig(), nil)

	w := send(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	w = send(engine, http.MethodPost, "/api/leads", "", map[string]string{"name": "Ann", "email": "a@x.com"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(engine, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_SessionRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Required = true
	engine := newTestEngine(t, cfg, nil)

	w := send(engine, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(engine, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin@123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = send(engine, http.MethodGet, "/api/leads", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	w = send(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_LoginRateLimit(t *testing.T) {
	limiter := cache.NewInMemoryRateLimiter(2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })
	engine := newTestEngine(t, testConfig(), limiter)

	creds := map[string]string{"username": "admin", "password": "wrong"}
	assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, "/api/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, "/api/auth/login", "", creds).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(engine, http.MethodPost, "/api/auth/login", "", creds).Code)

	// lead routes are not throttled
	for range 3 {
		assert.Equal(t, http.StatusOK, send(engine, http.MethodGet, "/api/leads", "", nil).Code)
	}
}

func TestNewEngine_LoginRateLimitIgnoresSuccess(t *testing.T) {
	limiter := cache.NewInMemoryRateLimiter(5, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })
	engine := newTestEngine(t, testConfig(), limiter)

	creds := map[string]string{"username": "admin", "password": "admin@123"}
	for i := range 8 {
		w := send(engine, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusOK, w.Code, "login #%d", i+1)
	}

	bad := map[string]string{"username": "admin", "password": "wrong"}
	for range 5 {
		assert.Equal(t, http.StatusUnauthorized, send(engine, http.MethodPost, "/api/auth/login", "", bad).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, send(engine, http.MethodPost, "/api/auth/login", "", creds).Code)
}

func TestNewEngine_ChunkedBodyOverLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.MaxBodySize = 64
	engine := newTestEngine(t, cfg, nil)

	big := `{"name":"` + strings.Repeat("x", 200) + `","email":"a@x.com"}`
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/leads"},
		{http.MethodPut, "/api/leads/1"},
		{http.MethodPost, "/api/auth/login"},
	} {
		// no declared length, so only the reader can catch it
		req := httptest.NewRequest(tc.method, tc.path, io.MultiReader(strings.NewReader(big)))
		require.Equal(t, int64(-1), req.ContentLength)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, tc.path)
		assert.JSONEq(t, `{"message":"Request body too large"}`, w.Body.String(), tc.path)
	}

	// nothing was stored
	w := send(engine, http.MethodGet, "/api/leads", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var leads []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	assert.Empty(t, leads)
}

func TestNewEngine_Swagger(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.SwaggerEnabled = true
	engine := newTestEngine(t, cfg, nil)

	w := send(engine, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Contains(t, doc.Paths["/api/leads"], "get")
	assert.Contains(t, doc.Paths["/api/leads"], "post")
	assert.Contains(t, doc.Paths["/api/leads/{id}"], "put")
	assert.Contains(t, doc.Paths["/api/leads/{id}"], "delete")
	assert.Contains(t, doc.Paths["/api/auth/login"], "post")
	assert.Contains(t, doc.Paths["/health"], "get")

	w = send(engine, http.MethodGet, "/swagger/index.html", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	disabled := newTestEngine(t, testConfig(), nil)
	assert.Equal(t, http.StatusNotFound, send(disabled, http.MethodGet, "/swagger/doc.json", "", nil).Code)
}

func TestNewEngine_CORSPreflight(t *testing.T) {
	engine := newTestEngine(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEngine_HTTPMetrics(t *testing.T) {
	cfg := testConfig()
	reader := sdkmetric.NewManualReader()
	deps := testDependencies(t, cfg)
	deps.Meter = telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	engine := NewEngine(cfg, deps)

	send(engine, http.MethodGet, "/api/leads", "", nil)
	send(engine, http.MethodDelete, "/api/leads/1", "", nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	routes := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				routes[route.AsString()] = true
			}
		}
	}
	assert.True(t, routes["/api/leads"])
	assert.True(t, routes["/api/leads/:id"])
}
