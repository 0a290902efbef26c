package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Ryavnn/Employee-Management-system/credentials"
	"github.com/Ryavnn/Employee-Management-system/guard"
	"github.com/Ryavnn/Employee-Management-system/identity"
	"github.com/Ryavnn/Employee-Management-system/internal/config"
)

// SessionBackend is the part of the HR backend the gateway drives directly:
// exchanging a password for a token and ending a session.
type SessionBackend interface {
	Login(ctx context.Context, username, password string) (*identity.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

var _ SessionBackend = (*identity.HTTPClient)(nil)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	store   credentials.Store
	backend SessionBackend
	access  *guard.Middleware
	router  *HTTPRouter
}

func New(config config.Config, store credentials.Store, backend SessionBackend, g *guard.Guard) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		store:   store,
		backend: backend,
		router:  &HTTPRouter{},
	}
	s.env = config.GetEnv()
	s.access = guard.NewMiddleware(g, s.router, RouteLogin, RouteUnauthorized)

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colourMethod(method), path))
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
