package credentials

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// ClientCookieName names the cookie that identifies a browser client
	// to the credential store.
	ClientCookieName = "ems_client"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

type clientIDContextKeyType struct{}

var clientIDKey = clientIDContextKeyType{}

// ClientIDFromContext extracts the browser client ID placed by EnsureClientID.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey).(string)
	return id, ok && id != ""
}

// WithClientID returns a copy of ctx carrying the client ID
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDFromRequest reads the client ID cookie, if present and well formed.
func ClientIDFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(ClientCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

// EnsureClientID returns the request's client ID, issuing a new cookie when
// the browser has none yet.
func EnsureClientID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := ClientIDFromRequest(r); ok {
		return id
	}
	id := NewClientID()
	SetClientIDCookie(w, r, id)
	return id
}

// NewClientID mints a random client ID
func NewClientID() string {
	return uuid.NewString()
}

// SetClientIDCookie points the browser at clientID. Login uses it to move an
// authenticated credential onto a freshly minted ID.
func SetClientIDCookie(w http.ResponseWriter, r *http.Request, clientID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    clientID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   clientCookieMaxAge,
	})
}
