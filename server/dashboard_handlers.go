package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

var dashboardTitles = map[roles.Role]string{
	roles.HR:       "HR Dashboard",
	roles.Manager:  "Manager Dashboard",
	roles.Employee: "Employee Dashboard",
}

// DashboardHandler renders the placeholder dashboard for role. It is only
// reachable through the role guard, which leaves its decision on the context.
func (s *Server) DashboardHandler(role roles.Role) http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")
	title := dashboardTitles[role]

	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := guard.DecisionFromContext(r.Context())
		if !ok || !d.Authorized() || d.Identity == nil {
			s.router.Redirect(w, r, RouteLogin, true)
			return
		}

		s.render(w, tmpl, PageData{
			AppName:  s.config.GetAppName(),
			Title:    title,
			Username: d.Identity.Username,
			Role:     d.Role.String(),
		}, http.StatusOK)
	}
}

// UnauthorizedHandler explains a role mismatch (GET /unauthorized). The
// link home uses the identity cached at login, which is display data only.
func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("unauthorized.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{AppName: s.config.GetAppName(), Title: "Unauthorized"}

		if clientID, ok := credentials.ClientIDFromContext(r.Context()); ok {
			cred, err := s.store.Get(r.Context(), clientID)
			switch {
			case err == nil && cred.Identity != nil:
				data.Home, _ = roles.Dashboard(cred.Identity.Role)
			case err != nil && !errors.Is(err, errors.ErrNoCredential):
				log.Err(err).Msg("Unauthorized: failed to read credential")
			}
		}

		s.render(w, tmpl, data, http.StatusForbidden)
	}
}
