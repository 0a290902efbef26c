package identity

import (
	"context"

	"github.com/Ryavnn/Employee-Management-system/credentials"
)

// Service validates a bearer token and returns the identity it belongs to.
//
// Implementations classify failures with the sentinel errors in
// internal/errors:
//   - ErrCredentialInvalid: the service rejected the token
//   - ErrServiceUnreachable: the service could not be contacted
//   - ErrMalformedResponse: the service answered with something unusable
//
// Callers treat every error as "not authenticated".
type Service interface {
	CurrentUser(ctx context.Context, token string) (*credentials.Identity, error)
}

// Envelope is the backend's response convention: every body carries a
// success flag and, on failure, a message.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CurrentUserResponse is the body of GET /api/current_user
type CurrentUserResponse struct {
	Envelope
	User *struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user,omitempty"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /api/login
type LoginResponse struct {
	Envelope
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}
