package provider

import (
	"context"
	"time"
)

// Tokens is the credential set returned by the provider's token endpoint.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	AccessExpiry time.Time

	// RefreshExpiry is zero when the provider does not advertise one.
	RefreshExpiry time.Time
}

// Identity is the user identity established during the authorization-code
// exchange. Claims are kept server-side; nothing here is ever embedded in
// the session identifier handed to the browser.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Roles   []string
}

// Client is the gateway's view of the external identity provider. It covers
// exactly two exchanges: authorization code and refresh grant. Failures are
// classified into the gateway error taxonomy (ErrInvalidGrant, ErrTransient,
// ErrRateLimited, ErrProtocol).
type Client interface {
	// AuthCodeURL builds the provider authorization URL for a new flow.
	AuthCodeURL(state, nonce, codeChallenge string) string

	// Exchange swaps an authorization code for tokens, verifying the ID token
	// signature and the nonce against expectedNonce. A nonce mismatch or any
	// malformed response is ErrProtocol.
	Exchange(ctx context.Context, code, codeVerifier, expectedNonce string) (Tokens, Identity, error)

	// Refresh performs a refresh-token grant. The returned Tokens carry the
	// rotated refresh token; if the provider did not rotate, the input token
	// is carried forward.
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}
