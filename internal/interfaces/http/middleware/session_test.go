package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService() *auth.SessionService {
	return auth.NewSessionService(config.SessionConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "minicrm-test",
	})
}

func TestRequireSession(t *testing.T) {
	sessions := newSessionService()

	router := gin.New()
	router.Use(RequireSession(sessions))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionUsername(c))
	})

	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header != "" {
			req.Header.Set(AuthHeaderKey, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		session, err := sessions.Issue("admin")
		require.NoError(t, err)

		w := send(BearerPrefix + session.Token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Body.String())
	})

	t.Run("rejections", func(t *testing.T) {
		other := auth.NewSessionService(config.SessionConfig{
			Secret:     "another-secret-key-at-least-32-chars",
			Expiration: time.Hour,
			Issuer:     "minicrm-test",
		})
		forged, err := other.Issue("admin")
		require.NoError(t, err)

		tests := []struct {
			name    string
			header  string
			message string
		}{
			{"missing header", "", "Missing authorization header"},
			{"wrong scheme", "Basic YWRtaW46cHc=", "Invalid authorization header format"},
			{"empty token", "Bearer ", "Missing token"},
			{"garbage token", "Bearer not-a-jwt", "Invalid or expired session"},
			{"foreign signature", BearerPrefix + forged.Token, "Invalid or expired session"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := send(tt.header)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.JSONEq(t, `{"message":"`+tt.message+`"}`, w.Body.String())
			})
		}
	})
}
