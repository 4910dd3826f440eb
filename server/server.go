package server

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-gateway/internal/config"
	"github.com/jrsteele09/go-session-gateway/provider"
	"github.com/jrsteele09/go-session-gateway/server/authflowrepo"
	"github.com/jrsteele09/go-session-gateway/session"
)

// Server is the HTTP surface of the session gateway: the sign-in/callback
// flow, the route guard, and the session API.
type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  *session.Manager
	provider  provider.Client
	authState authflowrepo.Repo
	allowlist *Allowlist
}

func New(cfg config.Config, sessions *session.Manager, providerClient provider.Client, authStateRepo authflowrepo.Repo) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if providerClient == nil {
		return nil, errors.New("[Server New] provider client is required")
	}
	if authStateRepo == nil {
		return nil, errors.New("[Server New] auth state repo is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		sessions:  sessions,
		provider:  providerClient,
		authState: authStateRepo,
		allowlist: NewAllowlist(cfg.GetPublicPaths()),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
