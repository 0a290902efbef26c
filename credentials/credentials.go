package credentials

import (
	"context"
	"time"

	"github.com/Ryavnn/Employee-Management-system/roles"
)

const (
	// TokenKey is the canonical name the bearer token is stored under
	TokenKey = "token"
	// UserKey is the name the cached display identity is stored under
	UserKey = "user"
)

// Identity is the display identity returned at login and by the identity service.
type Identity struct {
	Username string     `json:"username"`
	Role     roles.Role `json:"role"`
}

// Credential is what a browser client holds between page loads.
// Identity is a cached copy for display only; authorization always
// re-confirms the role with the identity service.
type Credential struct {
	Token    string    `json:"-"`
	Identity *Identity `json:"user,omitempty"`
	StoredAt time.Time `json:"stored_at"`
}

// Store holds credentials per browser client. Get returns
// errors.ErrNoCredential when the client has no token stored.
type Store interface {
	Get(ctx context.Context, clientID string) (Credential, error)
	Set(ctx context.Context, clientID string, cred Credential) error
	Clear(ctx context.Context, clientID string) error
}

func entryKey(clientID, name string) string {
	return clientID + "/" + name
}
