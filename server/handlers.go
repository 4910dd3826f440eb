package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ErrorPageHandler renders the generic failure page the auth flow and route
// guard redirect to. The reason query param is a canned message set by this
// service, never raw provider output.
func (s *Server) ErrorPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reason := r.URL.Query().Get("reason")
		if reason == "" {
			reason = "Something went wrong"
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
<p><a href="%s">Sign in again</a></p>
</body>
</html>`, template.HTMLEscapeString(s.config.GetAppName()), template.HTMLEscapeString(s.config.GetAppName()), template.HTMLEscapeString(reason), s.config.GetSignInPath())
	}
}

// DashboardHandler is the protected application shell. It exists so the
// gateway is usable standalone; real deployments typically proxy to an
// upstream app here instead.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromRequest(r)
		if !ok {
			writeError(w, "No session", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>Welcome, %s</h1>
<p><a href="%s">Sign out</a></p>
</body>
</html>`, template.HTMLEscapeString(s.config.GetAppName()), template.HTMLEscapeString(sess.Name), RouteSignOut)
	}
}
