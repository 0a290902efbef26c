// Package ginguard exposes the access guard as gin middleware.
package ginguard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// DecisionKey is the gin context key the authorizing decision is stored under
const DecisionKey = "access_decision"

// RequireRole adapts guard.Middleware to gin. The decision is made by the
// net/http middleware; if it handled the response (a redirect) the gin
// chain is aborted.
func RequireRole(mw *guard.Middleware, required roles.Role) gin.HandlerFunc {
	requireRole := mw.RequireRole(required)

	return func(c *gin.Context) {
		passed := false

		// Bridge handler to resume the gin chain once authorized
		next := func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			if d, ok := guard.DecisionFromContext(r.Context()); ok {
				c.Set(DecisionKey, d)
			}
			c.Next()
		}

		requireRole(next)(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}

// Decision returns the decision stored by RequireRole
func Decision(c *gin.Context) (guard.Decision, bool) {
	v, ok := c.Get(DecisionKey)
	if !ok {
		return guard.Decision{}, false
	}
	d, ok := v.(guard.Decision)
	return d, ok
}
