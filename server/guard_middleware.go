package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
	"github.com/jrsteele09/go-session-gateway/session"
)

// GuardState is the per-request outcome of the route guard state machine.
type GuardState int

const (
	GuardUnauthenticated GuardState = iota
	GuardAuthenticated
	GuardRefreshing
	GuardDenied
)

func (g GuardState) String() string {
	switch g {
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardAuthenticated:
		return "authenticated"
	case GuardRefreshing:
		return "refreshing"
	case GuardDenied:
		return "denied"
	}
	return "unknown"
}

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAccessToken stores the valid access token for downstream calls
	ContextKeyAccessToken ContextKey = "access_token"
	// ContextKeySession stores the authenticated session record
	ContextKeySession ContextKey = "session"
)

// AccessTokenFromRequest returns the access token the guard attached, or "".
func AccessTokenFromRequest(r *http.Request) string {
	token, _ := r.Context().Value(ContextKeyAccessToken).(string)
	return token
}

// SessionFromRequest returns the session the guard attached, if any.
func SessionFromRequest(r *http.Request) (session.Session, bool) {
	sess, ok := r.Context().Value(ContextKeySession).(session.Session)
	return sess, ok
}

// RouteGuard gates protected routes. Outcomes are a closed set: proceed with
// the access token attached, redirect to sign-in (preserving the requested
// path), or redirect to the error page. Allow-listed public paths bypass the
// guard entirely, before any session lookup.
func (s *Server) RouteGuard() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.allowlist.Matches(r.URL.Path) {
				next(w, r)
				return
			}

			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				log.Debug().Str("path", r.URL.Path).Stringer("state", GuardUnauthenticated).Msg("route guard")
				s.redirectToSignIn(w, r)
				return
			}
			sessionID := cookie.Value

			token, err := s.sessions.GetValidAccessToken(r.Context(), sessionID)
			if err != nil {
				s.denyRequest(w, r, err)
				return
			}

			sess, err := s.sessions.GetSession(r.Context(), sessionID)
			if err != nil {
				// Invalidated between the two lookups.
				s.denyRequest(w, r, err)
				return
			}

			log.Debug().Str("path", r.URL.Path).Str("subject", sess.Subject).Stringer("state", GuardAuthenticated).Msg("route guard")
			ctx := context.WithValue(r.Context(), ContextKeyAccessToken, token)
			ctx = context.WithValue(ctx, ContextKeySession, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// denyRequest maps session-manager failures onto the guard's outcomes. Raw
// provider errors never reach the user: terminal classes become a sign-in
// redirect, protocol errors a generic error page.
func (s *Server) denyRequest(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case gwerrors.Is(err, gwerrors.ErrSessionNotFound):
		log.Debug().Str("path", r.URL.Path).Stringer("state", GuardUnauthenticated).Msg("route guard")
		s.clearSessionCookie(w, r)
		s.redirectToSignIn(w, r)

	case gwerrors.Is(err, gwerrors.ErrProtocol):
		log.Warn().Str("path", r.URL.Path).Stringer("state", GuardDenied).Err(err).Msg("route guard")
		s.clearSessionCookie(w, r)
		http.Redirect(w, r, s.config.GetErrorPath(), http.StatusSeeOther)

	case gwerrors.IsTerminal(err), gwerrors.Is(err, gwerrors.ErrInvalidGrant):
		log.Info().Str("path", r.URL.Path).Stringer("state", GuardDenied).Err(err).Msg("route guard: session terminated")
		s.clearSessionCookie(w, r)
		s.redirectToSignIn(w, r)

	default:
		// The caller's own wait was cut short; the session itself may still
		// be fine, so keep the cookie and let the client retry.
		log.Warn().Str("path", r.URL.Path).Stringer("state", GuardRefreshing).Err(err).Msg("route guard: refresh wait abandoned")
		writeError(w, "Temporarily unable to validate session", http.StatusServiceUnavailable)
	}
}

func (s *Server) redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Path
	if r.URL.RawQuery != "" {
		returnTo += "?" + r.URL.RawQuery
	}
	target := s.config.GetSignInPath() + "?return_to=" + url.QueryEscape(returnTo)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
