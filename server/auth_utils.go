package server

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// sanitizeReturnPath keeps post-login redirects on this host. Anything that
// is not a plain local path falls back to the configured default.
func (s *Server) sanitizeReturnPath(raw string) string {
	fallback := s.config.GetDefaultReturnPath()
	if raw == "" {
		return fallback
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	if !strings.HasPrefix(parsed.Path, "/") || strings.HasPrefix(parsed.Path, "//") {
		return fallback
	}
	cleaned := parsed.Path
	if parsed.RawQuery != "" {
		cleaned += "?" + parsed.RawQuery
	}
	return cleaned
}

// redirectWithError sends the user to the error page with a generic reason.
// Specific provider failure detail stays in the logs.
func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	fullPath := s.config.GetErrorPath() + "?reason=" + url.QueryEscape(reason)
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}
