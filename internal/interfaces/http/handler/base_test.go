package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			"store error exposes cause",
			shared.NewStoreError("Error fetching leads", errors.New("connection refused")),
			http.StatusInternalServerError,
			`{"message":"Error fetching leads","error":"connection refused"}`,
		},
		{
			"auth error hides details",
			shared.ErrInvalidCredentials,
			http.StatusUnauthorized,
			`{"message":"Invalid username or password"}`,
		},
		{
			"body over the size limit",
			shared.NewStoreError("Error adding lead", &http.MaxBytesError{Limit: 64}),
			http.StatusRequestEntityTooLarge,
			`{"message":"Request body too large"}`,
		},
		{
			"unknown error",
			errors.New("boom"),
			http.StatusInternalServerError,
			`{"message":"Internal server error","error":"boom"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
