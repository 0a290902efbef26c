package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/roles"
	"github.com/stretchr/testify/require"
)

type redirect struct {
	destination      string
	preserveOriginal bool
	from             string
}

// recordingRouter remembers redirects instead of performing them
type recordingRouter struct {
	redirects []redirect
}

func (rr *recordingRouter) Redirect(w http.ResponseWriter, r *http.Request, destination string, preserveOriginal bool) {
	rr.redirects = append(rr.redirects, redirect{destination: destination, preserveOriginal: preserveOriginal, from: r.URL.RequestURI()})
	w.WriteHeader(http.StatusSeeOther)
}

func protectedView(rendered *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*rendered = true
		d, ok := guard.DecisionFromContext(r.Context())
		if ok {
			_, _ = w.Write([]byte("hello " + d.Identity.Username))
		}
	}
}

func newRequest(path string, withClient bool) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if withClient {
		r.AddCookie(&http.Cookie{Name: credentials.ClientCookieName, Value: testClientID})
	}
	return r
}

func TestMiddleware_Authorized(t *testing.T) {
	f := setupTestFixture(t)
	f.seedToken("abc123")
	f.ids.AddUser("abc123", credentials.Identity{Username: "jane", Role: roles.HR})

	router := &recordingRouter{}
	mw := guard.NewMiddleware(f.guard, router, "", "")

	rendered := false
	handler := mw.RequireRole(roles.HR)(protectedView(&rendered))

	// The client id normally comes from the gateway's client middleware
	r := newRequest("/dashboard-hr", false)
	r = r.WithContext(credentials.WithClientID(r.Context(), testClientID))
	w := httptest.NewRecorder()
	handler(w, r)

	require.True(t, rendered)
	require.Empty(t, router.redirects)
	require.Equal(t, "hello jane", w.Body.String())
}

func TestMiddleware_ClientIDFromCookie(t *testing.T) {
	f := setupTestFixture(t)
	f.seedToken("abc123")
	f.ids.AddUser("abc123", credentials.Identity{Username: "jane", Role: roles.Manager})

	router := &recordingRouter{}
	rendered := false
	handler := guard.NewMiddleware(f.guard, router, "", "").RequireAuth()(protectedView(&rendered))

	handler(httptest.NewRecorder(), newRequest("/dashboard-manager", true))
	require.True(t, rendered)
}

func TestMiddleware_RedirectsToLoginWithOrigin(t *testing.T) {
	f := setupTestFixture(t)

	router := &recordingRouter{}
	rendered := false
	handler := guard.NewMiddleware(f.guard, router, "/signin", "").RequireRole(roles.HR)(protectedView(&rendered))

	handler(httptest.NewRecorder(), newRequest("/dashboard-hr?tab=leave", true))

	require.False(t, rendered)
	require.Len(t, router.redirects, 1)
	require.Equal(t, "/signin", router.redirects[0].destination)
	require.True(t, router.redirects[0].preserveOriginal)
	require.Equal(t, "/dashboard-hr?tab=leave", router.redirects[0].from)
	require.Zero(t, f.ids.Calls())
}

func TestMiddleware_ForbiddenRedirect(t *testing.T) {
	f := setupTestFixture(t)
	f.seedToken("abc123")
	f.ids.AddUser("abc123", credentials.Identity{Username: "bob", Role: roles.Employee})

	router := &recordingRouter{}
	rendered := false
	handler := guard.NewMiddleware(f.guard, router, "", "").RequireRole(roles.HR)(protectedView(&rendered))

	handler(httptest.NewRecorder(), newRequest("/dashboard-hr", true))

	require.False(t, rendered)
	require.Len(t, router.redirects, 1)
	require.Equal(t, guard.DefaultUnauthorizedPath, router.redirects[0].destination)
	require.False(t, router.redirects[0].preserveOriginal)
	require.True(t, f.store.Has(testClientID))
}

func TestMiddleware_InvalidTokenRedirectsAndClears(t *testing.T) {
	f := setupTestFixture(t)
	f.seedToken("expired")

	router := &recordingRouter{}
	rendered := false
	handler := guard.NewMiddleware(f.guard, router, "", "").RequireRole(roles.HR)(protectedView(&rendered))

	handler(httptest.NewRecorder(), newRequest("/dashboard-hr", true))

	require.False(t, rendered)
	require.Equal(t, guard.DefaultLoginPath, router.redirects[0].destination)
	require.False(t, f.store.Has(testClientID))
}

func TestMiddleware_UnknownRequiredRolePanics(t *testing.T) {
	f := setupTestFixture(t)
	mw := guard.NewMiddleware(f.guard, &recordingRouter{}, "", "")

	require.Panics(t, func() { mw.RequireRole(roles.Role("admin")) })
}

func TestMiddleware_WaitsWhilePending(t *testing.T) {
	f := setupTestFixture(t)
	f.seedToken("abc123")
	f.ids.AddUser("abc123", credentials.Identity{Username: "jane", Role: roles.HR})
	f.ids.Gate = make(chan struct{})
	f.ids.Started = make(chan struct{}, 1)

	router := &recordingRouter{}
	rendered := false
	handler := guard.NewMiddleware(f.guard, router, "", "").RequireRole(roles.HR)(protectedView(&rendered))

	w := httptest.NewRecorder()
	served := make(chan struct{})
	go func() {
		defer close(served)
		handler(w, newRequest("/dashboard-hr", true))
	}()

	select {
	case <-f.ids.Started:
	case <-time.After(waitFor):
		t.Fatal("validation was not started")
	}

	// Nothing is written while the identity check is outstanding
	select {
	case <-served:
		t.Fatal("request finished before the identity check settled")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.ids.Gate)

	select {
	case <-served:
	case <-time.After(waitFor):
		t.Fatal("request did not finish")
	}
	require.True(t, rendered)
	require.Empty(t, router.redirects)
	require.Equal(t, "hello jane", w.Body.String())
}
