package server

import (
	"net/http"

	"github.com/Ryavnn/Employee-Management-system/roles"
)

func (s *Server) initRoutes() {
	// LOGIN (the SPA origin may post here cross-origin with credentials)
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.CorsMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.CorsMiddleware)...))
	s.RegisterRouteFunc("OPTIONS "+RouteAuthLogin, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteAuthLogout, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Guarded dashboards
	s.RegisterRouteFunc("GET "+RouteDashboardHR, ChainMiddleware(s.DashboardHandler(roles.HR), s.HTMLMiddleWare(s.access.RequireRole(roles.HR))...))
	s.RegisterRouteFunc("GET "+RouteDashboardManager, ChainMiddleware(s.DashboardHandler(roles.Manager), s.HTMLMiddleWare(s.access.RequireRole(roles.Manager))...))
	s.RegisterRouteFunc("GET "+RouteDashboardEmployee, ChainMiddleware(s.DashboardHandler(roles.Employee), s.HTMLMiddleWare(s.access.RequireRole(roles.Employee))...))

	s.RegisterRouteFunc("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteFunc("GET "+RouteHealthz, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	// Everything else lands on the login page
	s.RegisterRouteFunc("/", ChainMiddleware(s.FallbackHandler(), s.HTMLMiddleWare()...))
}

// FallbackHandler sends unknown paths (and "/") to the login page
func (s *Server) FallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteLogin)
	}
}

// PreflightHandler ends a CORS preflight once CorsMiddleware has set its headers
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports liveness (GET /healthz)
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
