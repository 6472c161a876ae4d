package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
	// Detail is the raw store error the server attached, if any
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// LoginResult is the server's answer to a successful login
type LoginResult struct {
	Message   string
	Token     string
	ExpiresAt time.Time
}

// Client talks to the lead API. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a client for the API at baseURL, e.g. "http://localhost:5000"
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token for subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ListLeads fetches every lead, most recent first
func (c *Client) ListLeads(ctx context.Context) ([]lead.Lead, error) {
	leads := make([]lead.Lead, 0)
	if err := c.do(ctx, http.MethodGet, "/api/leads", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// CreateLead adds a lead and returns its id
func (c *Client) CreateLead(ctx context.Context, name, email, source string) (int64, error) {
	body := map[string]string{"name": name, "email": email, "source": source}
	var resp dto.CreateLeadResponse
	if err := c.do(ctx, http.MethodPost, "/api/leads", body, &resp); err != nil {
		return 0, err
	}
	return resp.LeadID, nil
}

// UpdateLead overwrites status and notes of a lead
func (c *Client) UpdateLead(ctx context.Context, id int64, status lead.Status, notes string) error {
	body := map[string]string{"status": string(status), "notes": notes}
	return c.do(ctx, http.MethodPut, leadPath(id), body, nil)
}

// DeleteLead removes a lead
func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, leadPath(id), nil, nil)
}

// Login checks the admin credentials
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if !resp.LoggedIn {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	return &LoginResult{Message: resp.Message, Token: resp.Token, ExpiresAt: resp.ExpiresAt}, nil
}

func leadPath(id int64) string {
	return "/api/leads/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody dto.ErrorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
			apiErr.Detail = errBody.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
