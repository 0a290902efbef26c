package guard

import (
	"context"
	"net/http"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Default redirect destinations
const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"
)

// ViewRouter performs navigation away from a protected view. When
// preserveOriginal is set the destination receives the originally
// requested location so the caller can return there after login.
type ViewRouter interface {
	Redirect(w http.ResponseWriter, r *http.Request, destination string, preserveOriginal bool)
}

type decisionContextKeyType struct{}

var decisionKey = decisionContextKeyType{}

// DecisionFromContext returns the decision that authorized the current request
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionKey).(Decision)
	return d, ok
}

// Middleware adapts a Guard to net/http handlers
type Middleware struct {
	guard            *Guard
	router           ViewRouter
	loginPath        string
	unauthorizedPath string
}

// NewMiddleware creates the HTTP adapter. Empty paths use the defaults.
func NewMiddleware(g *Guard, router ViewRouter, loginPath, unauthorizedPath string) *Middleware {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if unauthorizedPath == "" {
		unauthorizedPath = DefaultUnauthorizedPath
	}
	return &Middleware{
		guard:            g,
		router:           router,
		loginPath:        loginPath,
		unauthorizedPath: unauthorizedPath,
	}
}

// RequireRole returns middleware that runs one guard activation per request.
// The request context is the activation's lifetime: a client that
// disconnects tears it down. An unknown required role panics here, when
// routes are registered, rather than being matched at request time.
func (m *Middleware) RequireRole(required roles.Role) func(http.HandlerFunc) http.HandlerFunc {
	if err := ValidateRequired(required); err != nil {
		panic(err)
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			clientID, ok := credentials.ClientIDFromContext(r.Context())
			if !ok {
				clientID, _ = credentials.ClientIDFromRequest(r)
			}

			a := m.guard.Activate(r.Context(), clientID, required)
			defer a.Teardown()

			// A redirect cannot follow a streamed loading view, so the request
			// waits out Pending here; a.State() still reports it meanwhile.
			d, settled := a.Wait(r.Context())
			if !settled {
				// Client is gone; nothing left to render to
				return
			}

			m.Apply(w, r, d, next)
		}
	}
}

// RequireAuth is RequireRole for views open to any authenticated role
func (m *Middleware) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(roles.Any)
}

// Apply maps a terminal decision onto the router or the wrapped view
func (m *Middleware) Apply(w http.ResponseWriter, r *http.Request, d Decision, next http.HandlerFunc) {
	switch d.Outcome {
	case Authorized:
		next(w, r.WithContext(context.WithValue(r.Context(), decisionKey, d)))
	case Forbidden:
		m.router.Redirect(w, r, m.unauthorizedPath, false)
	default:
		m.router.Redirect(w, r, m.loginPath, true)
	}
}
