package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Role dashboards, one per role (see roles.Dashboard)
	RouteDashboardHR       = "/dashboard-hr"
	RouteDashboardManager  = "/dashboard-manager"
	RouteDashboardEmployee = "/dashboard-employee"

	RouteUnauthorized = "/unauthorized"

	// API Routes
	RouteHealthz = "/healthz"
)

// Query parameters carried across redirects
const (
	paramFrom  = "from"
	paramError = "error"
)
