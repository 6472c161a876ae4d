package identity

import (
	"context"
	"crypto/subtle"

	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PasswordComparer verifies a password against a stored hash
type PasswordComparer interface {
	Compare(hash, password string) error
}

// SessionIssuer signs session tokens
type SessionIssuer interface {
	Issue(username string) (*auth.Session, error)
}

// Credentials is the single configured admin account
type Credentials struct {
	Username     string
	PasswordHash string
}

// AuthService checks logins against the admin credentials. It keeps no state between calls.
type AuthService struct {
	admin    Credentials
	hasher   PasswordComparer
	sessions SessionIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(admin Credentials, hasher PasswordComparer, sessions SessionIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		admin:    admin,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
	}
}

// Login succeeds only when both the username and the password match.
// The password is always compared, even for an unknown username, and every
// failure yields shared.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	_, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.admin.Username)) == 1
	passErr := s.hasher.Compare(s.admin.PasswordHash, input.Password)

	if !userOK || passErr != nil {
		s.logger.Warn("Login failed", zap.String("username", input.Username))
		telemetry.RecordError(span, shared.ErrInvalidCredentials)
		return nil, shared.ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(s.admin.Username)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to issue session token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Login successful", zap.String("username", input.Username))
	return &LoginResult{
		Username:  s.admin.Username,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
