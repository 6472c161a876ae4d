package identity

import "time"

// LoginInput contains the credentials submitted at login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned after a successful login
type LoginResult struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}
