package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadHandler_Lifecycle(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/leads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/leads", map[string]string{
		"name": "Ann", "email": "a@x.com", "source": "LinkedIn",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[dto.CreateLeadResponse](t, w)
	assert.Equal(t, dto.MsgLeadAdded, created.Message)
	assert.Positive(t, created.LeadID)

	w = srv.do(t, http.MethodGet, "/api/leads", nil)
	leads := decode[[]lead.Lead](t, w)
	require.Len(t, leads, 1)
	assert.Equal(t, created.LeadID, leads[0].ID)
	assert.Equal(t, "Ann", leads[0].Name)
	assert.Equal(t, lead.StatusNew, leads[0].Status)
	assert.Empty(t, leads[0].Notes)
	assert.False(t, leads[0].CreatedAt.IsZero())

	path := fmt.Sprintf("/api/leads/%d", created.LeadID)
	w = srv.do(t, http.MethodPut, path, map[string]string{"status": "contacted", "notes": "called"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Lead updated successfully"}`, w.Body.String())

	leads = decode[[]lead.Lead](t, srv.do(t, http.MethodGet, "/api/leads", nil))
	require.Len(t, leads, 1)
	assert.Equal(t, lead.StatusContacted, leads[0].Status)
	assert.Equal(t, "called", leads[0].Notes)

	w = srv.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Lead deleted successfully"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/leads", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLeadHandler_ListNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"first", "second", "third"} {
		w := srv.do(t, http.MethodPost, "/api/leads", map[string]string{"name": name, "email": name + "@x.com"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	leads := decode[[]lead.Lead](t, srv.do(t, http.MethodGet, "/api/leads", nil))
	require.Len(t, leads, 3)
	assert.Equal(t, "third", leads[0].Name)
	assert.Equal(t, "first", leads[2].Name)
	assert.Empty(t, leads[0].Source)
}

func TestLeadHandler_UnknownIDSucceeds(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPut, "/api/leads/999", map[string]string{"status": "converted", "notes": ""})
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/leads/999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLeadHandler_StatusIsNotValidated(t *testing.T) {
	srv := newTestServer(t)

	created := decode[dto.CreateLeadResponse](t, srv.do(t, http.MethodPost, "/api/leads",
		map[string]string{"name": "Bo", "email": "b@x.com"}))

	w := srv.do(t, http.MethodPut, fmt.Sprintf("/api/leads/%d", created.LeadID),
		map[string]string{"status": "lost", "notes": "n"})
	require.Equal(t, http.StatusOK, w.Code)

	leads := decode[[]lead.Lead](t, srv.do(t, http.MethodGet, "/api/leads", nil))
	assert.Equal(t, lead.Status("lost"), leads[0].Status)
}

func TestLeadHandler_Failures(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		message string
	}{
		{"create without email", http.MethodPost, "/api/leads", map[string]string{"name": "Ann"}, "Error adding lead"},
		{"create with malformed body", http.MethodPost, "/api/leads", `{"name":`, "Error adding lead"},
		{"update without status", http.MethodPut, "/api/leads/1", map[string]string{"notes": "x"}, "Error updating lead"},
		{"update with non-numeric id", http.MethodPut, "/api/leads/abc", map[string]string{"status": "new"}, "Error updating lead"},
		{"delete with non-numeric id", http.MethodDelete, "/api/leads/abc", nil, "Error deleting lead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusInternalServerError, w.Code)

			resp := decode[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.message, resp.Message)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestLeadHandler_StoreUnavailable(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.db.Close())

	w := srv.do(t, http.MethodGet, "/api/leads", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "Error fetching leads", resp.Message)
	assert.Contains(t, resp.Error, "database is closed")
}
