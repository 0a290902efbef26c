package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/identity/devserver"
	"github.com/Ryavnn/Employee-Management-system/internal/config"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
	"github.com/Ryavnn/Employee-Management-system/server"
)

const testClientID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

type testFixture struct {
	server   *server.Server
	store    *credentials.InMemoryStore
	backend  *httptest.Server
	clientID string // follows the ems_client cookie like a browser would
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173")

	users := devserver.NewInMemoryUsers()
	require.NoError(t, devserver.SeedDefault(users))
	_, err := users.Add("eve", "employee123", roles.Employee)
	require.NoError(t, err)

	backend := httptest.NewServer(devserver.New(users, []byte("test-secret"), time.Hour))
	t.Cleanup(backend.Close)

	client := identity.NewHTTPClient(backend.URL)
	store := credentials.NewInMemoryStore(time.Hour)
	g := guard.New(store, client, guard.WithTimeout(2*time.Second))

	return &testFixture{
		server:   server.New(config.New(), store, client, g),
		store:    store,
		backend:  backend,
		clientID: testClientID,
	}
}

// do sends a request with the fixture's current client cookie and adopts
// any client cookie the response sets
func (f *testFixture) do(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	w := f.doAs(f.clientID, method, target, form, headers...)
	for _, c := range w.Result().Cookies() {
		if c.Name == credentials.ClientCookieName {
			f.clientID = c.Value
		}
	}
	return w
}

// doAs sends a request carrying the given client cookie
func (f *testFixture) doAs(clientID, method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	r.AddCookie(&http.Cookie{Name: credentials.ClientCookieName, Value: clientID})

	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)
	return w
}

func (f *testFixture) login(t *testing.T, username, password, from string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	if from != "" {
		form.Set("from", from)
	}
	return f.do(http.MethodPost, server.RouteAuthLogin, form)
}

func location(t *testing.T, w *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code)
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func TestDashboardRoutesMatchRoles(t *testing.T) {
	for route, role := range map[string]roles.Role{
		server.RouteDashboardHR:       roles.HR,
		server.RouteDashboardManager:  roles.Manager,
		server.RouteDashboardEmployee: roles.Employee,
	} {
		path, ok := roles.Dashboard(role)
		require.True(t, ok)
		require.Equal(t, route, path)
	}
}

func TestDashboard_NoCredentialRedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(http.MethodGet, server.RouteDashboardHR+"?tab=leave", nil)

	loc := location(t, w)
	require.Equal(t, server.RouteLogin, loc.Path)
	require.Equal(t, "/dashboard-hr?tab=leave", loc.Query().Get("from"))
	require.NotContains(t, w.Body.String(), "HR Dashboard")
}

func TestClientCookieIssued(t *testing.T) {
	f := setupTestFixture(t)

	r := httptest.NewRequest(http.MethodGet, server.RouteLogin, nil)
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, credentials.ClientCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
}

func TestLoginFlow(t *testing.T) {
	f := setupTestFixture(t)

	w := f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, "")
	require.Equal(t, server.RouteDashboardHR, location(t, w).Path)

	cred, err := f.store.Get(context.Background(), f.clientID)
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	require.Equal(t, roles.HR, cred.Identity.Role)

	require.NotEqual(t, testClientID, f.clientID)

	w = f.do(http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "HR Dashboard")
	require.Contains(t, w.Body.String(), devserver.DefaultHRUsername)
	require.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
}

func TestLogin_RotatesClientID(t *testing.T) {
	f := setupTestFixture(t)
	preLogin := f.clientID

	w := f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, "")
	require.Equal(t, server.RouteDashboardHR, location(t, w).Path)
	require.NotEqual(t, preLogin, f.clientID)

	// A client id known before login must not carry the session
	_, err := f.store.Get(context.Background(), preLogin)
	require.ErrorIs(t, err, errors.ErrNoCredential)

	w = f.doAs(preLogin, http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, server.RouteLogin, location(t, w).Path)

	w = f.do(http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("Wrong password", func(t *testing.T) {
		f := setupTestFixture(t)
		loc := location(t, f.login(t, devserver.DefaultHRUsername, "wrong", "/dashboard-hr"))

		require.Equal(t, server.RouteLogin, loc.Path)
		require.Equal(t, "Invalid username or password", loc.Query().Get("error"))
		require.Equal(t, devserver.DefaultHRUsername, loc.Query().Get("username"))
		require.Equal(t, "/dashboard-hr", loc.Query().Get("from"))

		_, err := f.store.Get(context.Background(), f.clientID)
		require.ErrorIs(t, err, errors.ErrNoCredential)
	})

	t.Run("Missing fields", func(t *testing.T) {
		f := setupTestFixture(t)
		loc := location(t, f.login(t, "", "", ""))
		require.Equal(t, "Username and password are required", loc.Query().Get("error"))
	})

	t.Run("Backend down", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.Close()
		loc := location(t, f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, ""))
		require.Equal(t, "Network error. Please try again.", loc.Query().Get("error"))
	})
}

func TestLoginPage_ShowsError(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(http.MethodGet, server.RouteLogin+"?error=Invalid+username+or+password&from=%2F%2Fevil.example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Invalid username or password")
	require.NotContains(t, w.Body.String(), "evil.example.com")
}

func TestLogin_ReturnLocation(t *testing.T) {
	t.Run("Local path honoured", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, "/dashboard-hr?tab=leave")
		require.Equal(t, "/dashboard-hr?tab=leave", w.Header().Get("Location"))
	})

	for _, from := range []string{"//evil.example.com/x", "https://evil.example.com", "/\\evil.example.com", "/login", "/auth/logout"} {
		t.Run("Ignored "+from, func(t *testing.T) {
			f := setupTestFixture(t)
			w := f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, from)
			require.Equal(t, server.RouteDashboardHR, w.Header().Get("Location"))
		})
	}
}

func TestRoleMismatch(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, "eve", "employee123", "")

	w := f.do(http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, server.RouteUnauthorized, location(t, w).Path)

	// The credential is kept on a role mismatch
	_, err := f.store.Get(context.Background(), f.clientID)
	require.NoError(t, err)

	w = f.do(http.MethodGet, server.RouteUnauthorized, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), `href="/dashboard-employee"`)

	w = f.do(http.MethodGet, server.RouteDashboardEmployee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Employee Dashboard")
}

func TestInvalidStoredTokenIsCleared(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Set(context.Background(), testClientID, credentials.Credential{
		Token:    "forged",
		Identity: &credentials.Identity{Username: "mallory", Role: roles.HR},
	}))

	w := f.do(http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, server.RouteLogin, location(t, w).Path)

	_, err := f.store.Get(context.Background(), f.clientID)
	require.ErrorIs(t, err, errors.ErrNoCredential)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, "")

	w := f.do(http.MethodPost, server.RouteAuthLogout, nil)
	require.Equal(t, server.RouteLogin, location(t, w).Path)

	_, err := f.store.Get(context.Background(), f.clientID)
	require.ErrorIs(t, err, errors.ErrNoCredential)

	w = f.do(http.MethodGet, server.RouteDashboardHR, nil)
	require.Equal(t, server.RouteLogin, location(t, w).Path)
}

func TestLogout_GetDoesNotLogOut(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, devserver.DefaultHRUsername, devserver.DefaultHRPassword, "")

	w := f.do(http.MethodGet, server.RouteAuthLogout, nil)
	require.Equal(t, server.RouteLogin, location(t, w).Path)

	_, err := f.store.Get(context.Background(), f.clientID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, server.RouteDashboardHR, nil).Code)
}

func TestHTMXRedirects(t *testing.T) {
	f := setupTestFixture(t)

	w := f.do(http.MethodGet, server.RouteDashboardManager, nil, "HX-Request", "true")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("HX-Redirect"), server.RouteLogin+"?from="))
}

func TestFallbackAndHealth(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{"/", "/no-such-page"} {
		require.Equal(t, server.RouteLogin, location(t, f.do(http.MethodGet, path, nil)).Path)
	}

	w := f.do(http.MethodGet, server.RouteHealthz, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	const spaOrigin = "http://localhost:5173"

	t.Run("Preflight allowed origin", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.do(http.MethodOptions, server.RouteAuthLogin, nil, "Origin", spaOrigin)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, spaOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("Preflight other origin", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.do(http.MethodOptions, server.RouteAuthLogout, nil, "Origin", "http://elsewhere.example.com")
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Cross-origin login", func(t *testing.T) {
		f := setupTestFixture(t)
		form := url.Values{"username": {devserver.DefaultHRUsername}, "password": {devserver.DefaultHRPassword}}
		w := f.do(http.MethodPost, server.RouteAuthLogin, form, "Origin", spaOrigin)

		require.Equal(t, server.RouteDashboardHR, location(t, w).Path)
		require.Equal(t, spaOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Pages carry no CORS headers", func(t *testing.T) {
		f := setupTestFixture(t)
		w := f.do(http.MethodGet, server.RouteHealthz, nil, "Origin", spaOrigin)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	handler := server.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, f.server.RecoverMiddleware)

	w := httptest.NewRecorder()
	require.NotPanics(t, func() { handler(w, httptest.NewRequest(http.MethodGet, "/", nil)) })
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
