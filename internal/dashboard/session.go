package dashboard

import (
	"context"
	"errors"
	"sync"
)

// State is the login state of a dashboard session
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Authenticator performs the login request
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// TokenHolder receives the session token after login
type TokenHolder interface {
	SetToken(token string)
}

// Session tracks whether the admin has logged in. It moves from LoggedOut to
// LoggedIn once and never back; nothing is persisted.
type Session struct {
	auth   Authenticator
	tokens TokenHolder

	mu        sync.Mutex
	state     State
	lastError string
}

// NewSession creates a logged-out session. tokens may be nil.
func NewSession(auth Authenticator, tokens TokenHolder) *Session {
	return &Session{auth: auth, tokens: tokens}
}

// Login checks the credentials. A logged-in session stays logged in without a request.
// On failure the server's message is kept for display.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	if s.state == LoggedIn {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	result, err := s.auth.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			s.lastError = apiErr.Message
		} else {
			s.lastError = "Login failed"
		}
		return err
	}

	if s.tokens != nil && result.Token != "" {
		s.tokens.SetToken(result.Token)
	}
	s.state = LoggedIn
	s.lastError = ""
	return nil
}

// State returns the current login state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoggedIn reports whether a login has succeeded
func (s *Session) LoggedIn() bool {
	return s.State() == LoggedIn
}

// LastError returns the message of the last failed login
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}
