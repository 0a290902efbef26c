// Package devserver is a local stand-in for the HR backend's session
// endpoints: login, current user and logout.
package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/identity"
)

const (
	msgInvalidLogin  = "Invalid username or password"
	msgMissingHeader = "Missing or invalid authorization header"
	msgInvalidToken  = "Invalid or expired token"
	msgBadRequest    = "Username and password are required"
)

type Server struct {
	mux      *http.ServeMux
	users    UserStore
	issuer   *identity.JWTIssuer
	verifier *identity.JWTVerifier
}

func New(users UserStore, secret []byte, ttl time.Duration) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		users:    users,
		issuer:   identity.NewJWTIssuer(secret, ttl),
		verifier: identity.NewJWTVerifier(secret),
	}
	s.mux.HandleFunc("POST "+identity.PathLogin, s.LoginHandler())
	s.mux.HandleFunc("GET "+identity.PathCurrentUser, s.CurrentUserHandler())
	s.mux.HandleFunc("POST "+identity.PathLogout, s.LogoutHandler())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// LoginHandler checks the password and issues a session token (POST /api/login)
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identity.LoginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, identity.Envelope{Message: msgBadRequest})
			return
		}

		user, err := s.users.ByUsername(req.Username)
		if err != nil || !CheckPasswordHash(req.Password, user.PasswordHash) {
			log.Info().Str("username", req.Username).Msg("Login rejected")
			writeJSON(w, http.StatusUnauthorized, identity.Envelope{Message: msgInvalidLogin})
			return
		}

		token, err := s.issuer.Issue(user.ID, user.Username, user.Role)
		if err != nil {
			log.Err(err).Msg("Failed to issue token")
			writeJSON(w, http.StatusInternalServerError, identity.Envelope{Message: "Failed to issue token"})
			return
		}

		writeJSON(w, http.StatusOK, identity.LoginResponse{
			Envelope: identity.Envelope{Success: true},
			Token:    token,
			Username: user.Username,
			Role:     string(user.Role),
		})
	}
}

// CurrentUserHandler reports who owns the bearer token (GET /api/current_user)
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, identity.Envelope{Message: msgMissingHeader})
			return
		}

		claims, err := s.verifier.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, identity.Envelope{Message: msgInvalidToken})
			return
		}

		resp := identity.CurrentUserResponse{Envelope: identity.Envelope{Success: true}}
		resp.User = &struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		}{Username: claims.Username, Role: claims.Role}
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler always succeeds; tokens are stateless (POST /api/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, identity.Envelope{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}
