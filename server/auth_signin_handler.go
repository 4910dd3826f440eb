package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-session-gateway/server/authflowrepo"
)

// SignInHandler starts the authorization-code flow. It mints fresh state,
// nonce and PKCE material for every attempt, records it keyed by the state
// parameter, and redirects the browser to the provider.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnTo := s.sanitizeReturnPath(r.URL.Query().Get("return_to"))

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		codeVerifier := generateRandomString(32)
		codeChallenge := generateCodeChallenge(codeVerifier)

		err := s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    returnTo,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			log.Error().Err(err).Msg("[SignInHandler] failed to store auth flow state")
			http.Error(w, "Unable to start sign-in", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, s.provider.AuthCodeURL(state, nonce, codeChallenge), http.StatusFound)
	}
}
