package provider

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-session-gateway/internal/config"
	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
)

// OIDCClient is the real provider client, built from OIDC discovery on the
// configured issuer. It is safe for concurrent use.
type OIDCClient struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewOIDCClient discovers the issuer's endpoints and constructs the client.
// redirectURL is the gateway's own callback URL.
func NewOIDCClient(ctx context.Context, cfg config.ProviderConfig, redirectURL string) (*OIDCClient, error) {
	oidcProvider, err := oidc.NewProvider(ctx, cfg.GetIssuerURL())
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCClient] OIDC discovery")
	}

	return &OIDCClient{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     oidcProvider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       cfg.GetScopes(),
		},
		verifier: oidcProvider.Verifier(&oidc.Config{
			ClientID: cfg.GetClientID(),
		}),
	}, nil
}

func (c *OIDCClient) AuthCodeURL(state, nonce, codeChallenge string) string {
	return c.oauth2Config.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (c *OIDCClient) Exchange(ctx context.Context, code, codeVerifier, expectedNonce string) (Tokens, Identity, error) {
	oauth2Token, err := c.oauth2Config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return Tokens{}, Identity{}, classifyTokenEndpointError(err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Tokens{}, Identity{}, errors.Wrap(gwerrors.ErrProtocol, "[Exchange] no ID token in response")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Tokens{}, Identity{}, errors.Wrapf(gwerrors.ErrProtocol, "[Exchange] ID token verification failed: %v", err)
	}

	var claims struct {
		Nonce string   `json:"nonce"`
		Sub   string   `json:"sub"`
		Email string   `json:"email"`
		Name  string   `json:"name"`
		Roles []string `json:"roles"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Tokens{}, Identity{}, errors.Wrapf(gwerrors.ErrProtocol, "[Exchange] failed to extract claims: %v", err)
	}

	// Nonce must round-trip unchanged to rule out replayed responses.
	if claims.Nonce != expectedNonce {
		return Tokens{}, Identity{}, errors.Wrap(gwerrors.ErrProtocol, "[Exchange] nonce mismatch")
	}

	identity := Identity{
		Subject: claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Roles:   claims.Roles,
	}
	// Some providers (UAA, Keycloak) carry roles only in the access token.
	if len(identity.Roles) == 0 {
		identity.Roles = rolesFromAccessToken(oauth2Token.AccessToken)
	}

	return tokensFrom(oauth2Token, ""), identity, nil
}

func (c *OIDCClient) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	tokenSource := c.oauth2Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := tokenSource.Token()
	if err != nil {
		return Tokens{}, classifyTokenEndpointError(err)
	}
	return tokensFrom(oauth2Token, refreshToken), nil
}

// tokensFrom converts an oauth2 token, falling back to previousRefreshToken
// when the provider did not rotate the refresh token in its response.
func tokensFrom(tok *oauth2.Token, previousRefreshToken string) Tokens {
	tokens := Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		AccessExpiry: tok.Expiry,
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = previousRefreshToken
	}
	if secs, ok := refreshExpirySeconds(tok); ok {
		tokens.RefreshExpiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return tokens
}

// refreshExpirySeconds reads the non-standard refresh_expires_in field some
// providers include in token responses.
func refreshExpirySeconds(tok *oauth2.Token) (int64, bool) {
	switch v := tok.Extra("refresh_expires_in").(type) {
	case float64:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	default:
		return 0, false
	}
}

// rolesFromAccessToken peeks at access-token claims without verifying the
// signature. The token was just issued over TLS by the provider; it is only
// used to enrich the server-side identity, never to authorize by itself.
func rolesFromAccessToken(accessToken string) []string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil
	}

	rawRoles, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

var _ Client = (*OIDCClient)(nil)
