package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/internal/errors"
	"github.com/Ryavnn/Employee-Management-system/roles"
)

// Login messages shown to the user
const (
	msgMissingFields  = "Username and password are required"
	msgUnknownRole    = "Unknown user role"
	msgLoginFailed    = "Login failed"
	msgNetworkFailure = "Network error. Please try again."
)

// PageData is the template model shared by the gateway pages
type PageData struct {
	AppName  string
	Title    string
	Error    string
	From     string // Location to return to after login
	Username string // Preserve username on error
	Role     string
	Home     string
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := PageData{
			AppName:  s.config.GetAppName(),
			Title:    "Login",
			Error:    q.Get(paramError),
			Username: q.Get("username"),
		}
		if from := q.Get(paramFrom); isSafeLocalPath(from) {
			data.From = from
		}
		s.render(w, loginTmpl, data, http.StatusOK)
	}
}

// LoginSubmissionHandler exchanges the form's username and password for a
// token, stores it for this browser and lands on the role's dashboard
// (POST /auth/login).
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		from := r.FormValue(paramFrom)

		if username == "" || password == "" {
			s.renderLoginError(w, r, msgMissingFields, username, from)
			return
		}

		clientID, ok := credentials.ClientIDFromContext(r.Context())
		if !ok {
			log.Error().Msg("Login: no client id on request")
			s.renderLoginError(w, r, msgLoginFailed, username, from)
			return
		}

		result, err := s.backend.Login(r.Context(), username, password)
		if err != nil {
			log.Info().Err(err).Str("username", username).Msg("Login failed")
			s.renderLoginError(w, r, loginErrorMessage(err), username, from)
			return
		}

		dashboard, ok := roles.Dashboard(result.Identity.Role)
		if !ok {
			s.renderLoginError(w, r, msgUnknownRole, username, from)
			return
		}

		// The session lives under a new client id; the pre-login one is dropped
		sessionID := credentials.NewClientID()
		cred := credentials.Credential{Token: result.Token, Identity: &result.Identity}
		if err := s.store.Set(r.Context(), sessionID, cred); err != nil {
			log.Err(err).Msg("Login: failed to store credential")
			s.renderLoginError(w, r, msgLoginFailed, username, from)
			return
		}
		credentials.SetClientIDCookie(w, r, sessionID)
		if err := s.store.Clear(r.Context(), clientID); err != nil {
			log.Err(err).Msg("Login: failed to clear pre-login credential")
		}

		destination := dashboard
		if isReturnLocation(from) {
			destination = from
		}
		redirectSuccess(w, r, destination)
	}
}

// LogoutHandler ends the backend session, forgets this browser's credential
// and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, ok := credentials.ClientIDFromContext(r.Context())
		if !ok {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		if cred, err := s.store.Get(r.Context(), clientID); err == nil && cred.Token != "" {
			if err := s.backend.Logout(r.Context(), cred.Token); err != nil {
				log.Warn().Err(err).Msg("Logout: backend logout failed")
			}
		}

		if err := s.store.Clear(r.Context(), clientID); err != nil {
			log.Err(err).Msg("Logout: failed to clear credential")
		}

		redirectSuccess(w, r, RouteLogin)
	}
}

func loginErrorMessage(err error) string {
	var rejected *identity.RejectedError
	switch {
	case errors.Is(err, errors.ErrUnknownRole):
		return msgUnknownRole
	case errors.Is(err, errors.ErrServiceUnreachable):
		return msgNetworkFailure
	case errors.As(err, &rejected) && rejected.Message != "":
		return rejected.Message
	default:
		return msgLoginFailed
	}
}

// isReturnLocation reports whether a "from" value may be honoured after login
func isReturnLocation(from string) bool {
	if !isSafeLocalPath(from) {
		return false
	}
	return from != RouteLogin && !strings.HasPrefix(from, RouteLogin+"?") && !strings.HasPrefix(from, "/auth/")
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username, from string) {
	q := url.Values{}
	if username != "" {
		q.Set("username", username)
	}
	if isSafeLocalPath(from) {
		q.Set(paramFrom, from)
	}
	redirectWithError(w, r, RouteLogin+"?"+q.Encode(), errorMsg)
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data PageData, status int) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}
