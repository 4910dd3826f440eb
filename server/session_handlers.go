package server

import (
	"net/http"
	"time"
)

// MeResponse is the identity view exposed to front ends. Tokens are never
// part of it.
type MeResponse struct {
	Authenticated bool     `json:"authenticated"`
	Subject       string   `json:"subject,omitempty"`
	Email         string   `json:"email,omitempty"`
	Name          string   `json:"name,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// SessionInfoResponse describes session lifetime without revealing tokens.
type SessionInfoResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	AbsoluteExpiry time.Time `json:"absolute_expiry"`
	ExpiresIn      int64     `json:"expires_in_seconds"`
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromRequest(r)
		if !ok {
			writeJSON(w, http.StatusOK, MeResponse{Authenticated: false})
			return
		}

		writeJSON(w, http.StatusOK, MeResponse{
			Authenticated: true,
			Subject:       sess.Subject,
			Email:         sess.Email,
			Name:          sess.Name,
			Roles:         sess.Roles,
		})
	}
}

func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromRequest(r)
		if !ok {
			writeError(w, "No session", http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, SessionInfoResponse{
			CreatedAt:      sess.CreatedAt,
			AbsoluteExpiry: sess.AbsoluteExpiry,
			ExpiresIn:      int64(time.Until(sess.AbsoluteExpiry).Seconds()),
		})
	}
}
