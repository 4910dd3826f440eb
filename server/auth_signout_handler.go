package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// SignOutHandler invalidates the caller's session and clears the cookie.
// Sign-out is idempotent: a missing or already-invalidated session still
// ends with a cleared cookie and a redirect to sign-in.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			if err := s.sessions.InvalidateSession(r.Context(), cookie.Value); err != nil {
				log.Warn().Err(err).Msg("[SignOutHandler] failed to invalidate session")
			}
		}

		s.clearSessionCookie(w, r)
		http.Redirect(w, r, s.config.GetSignInPath(), http.StatusSeeOther)
	}
}
