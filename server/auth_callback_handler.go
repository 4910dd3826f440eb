package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

// OAuthCallbackHandler completes the authorization-code flow. Every check
// fails closed: no session and no cookie are created unless state lookup,
// code exchange and identity verification all succeed.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both GET query params and form_post bodies
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		if errorParam != "" {
			log.Warn().Str("error", errorParam).Str("error_description", r.FormValue("error_description")).Msg("[OAuthCallbackHandler] provider returned error")
			s.redirectWithError(w, r, "Sign-in was not completed")
			return
		}

		if code == "" || state == "" {
			s.redirectWithError(w, r, "Missing code or state parameter")
			return
		}

		authState, err := s.authState.Get(state)
		if err != nil || authState == nil {
			log.Warn().Msg("[OAuthCallbackHandler] unknown or reused state parameter")
			s.redirectWithError(w, r, "Invalid sign-in attempt")
			return
		}

		// State is single use. Delete before the exchange so a concurrent
		// replay of the same callback cannot race past the lookup.
		if err := s.authState.Delete(state); err != nil {
			log.Error().Err(err).Msg("[OAuthCallbackHandler] failed to consume state")
			s.redirectWithError(w, r, "Invalid sign-in attempt")
			return
		}

		if time.Since(authState.CreatedAt) > s.config.GetAuthFlowTimeout() {
			log.Warn().Time("created_at", authState.CreatedAt).Msg("[OAuthCallbackHandler] auth flow state expired")
			s.redirectWithError(w, r, "Sign-in took too long, please try again")
			return
		}

		tokens, identity, err := s.provider.Exchange(r.Context(), code, authState.CodeVerifier, authState.Nonce)
		if err != nil {
			log.Error().Err(err).Msg("[OAuthCallbackHandler] token exchange failed")
			s.redirectWithError(w, r, "Sign-in failed")
			return
		}

		sessionID, err := s.sessions.CreateSession(r.Context(), identity, tokenstore.TokenRecord{
			AccessToken:   tokens.AccessToken,
			RefreshToken:  tokens.RefreshToken,
			AccessExpiry:  tokens.AccessExpiry,
			RefreshExpiry: tokens.RefreshExpiry,
		})
		if err != nil {
			log.Error().Err(err).Str("subject", identity.Subject).Msg("[OAuthCallbackHandler] failed to create session")
			s.redirectWithError(w, r, "Sign-in failed")
			return
		}

		maxAge := int(s.config.GetMaxSessionAge().Seconds())
		s.setSessionCookie(w, r, sessionID, maxAge)

		returnURL := authState.ReturnURL
		if returnURL == "" {
			returnURL = s.config.GetDefaultReturnPath()
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}
