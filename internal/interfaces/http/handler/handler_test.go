package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	applead "github.com/minicrm/backend/internal/application/lead"
	"github.com/minicrm/backend/internal/application/identity"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/config"
	"github.com/minicrm/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	db     *persistence.Database
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("admin@123")
	require.NoError(t, err)
	sessions := auth.NewSessionService(config.SessionConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "minicrm-test",
	})

	leads := NewLeadHandler(applead.NewService(persistence.NewGormLeadRepository(db.DB), zap.NewNop()))
	login := NewAuthHandler(identity.NewAuthService(
		identity.Credentials{Username: "admin", PasswordHash: hash}, hasher, sessions, zap.NewNop()))
	health := NewHealthHandler(db)

	engine := gin.New()
	engine.GET("/health", health.Health)
	api := engine.Group("/api")
	api.GET("/leads", leads.List)
	api.POST("/leads", leads.Create)
	api.PUT("/leads/:id", leads.Update)
	api.DELETE("/leads/:id", leads.Delete)
	api.POST("/auth/login", login.Login)

	return &testServer{engine: engine, db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
