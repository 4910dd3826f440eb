package provider

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func mintAccessToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestRolesFromAccessToken(t *testing.T) {
	accessToken := mintAccessToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"roles": []string{"admin", "viewer"},
	})

	require.Equal(t, []string{"admin", "viewer"}, rolesFromAccessToken(accessToken))
}

func TestRolesFromAccessTokenNoRolesClaim(t *testing.T) {
	accessToken := mintAccessToken(t, jwt.MapClaims{"sub": "user-1"})
	require.Nil(t, rolesFromAccessToken(accessToken))
}

func TestRolesFromAccessTokenOpaque(t *testing.T) {
	// Providers may issue opaque (non-JWT) access tokens
	require.Nil(t, rolesFromAccessToken("opaque-access-token"))
}

func TestTokensFromCarriesForwardRefreshToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	// Provider rotated the refresh token
	rotated := tokensFrom(&oauth2.Token{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		Expiry:       expiry,
	}, "old-refresh")
	require.Equal(t, "new-refresh", rotated.RefreshToken)

	// Provider did not rotate: the previous refresh token stays live
	unrotated := tokensFrom(&oauth2.Token{
		AccessToken: "new-access",
		Expiry:      expiry,
	}, "old-refresh")
	require.Equal(t, "old-refresh", unrotated.RefreshToken)
}

func TestTokensFromReadsRefreshExpiry(t *testing.T) {
	tok := (&oauth2.Token{
		AccessToken: "access",
		Expiry:      time.Now().Add(time.Hour),
	}).WithExtra(map[string]interface{}{
		"refresh_expires_in": float64(3600),
	})

	tokens := tokensFrom(tok, "refresh")
	require.False(t, tokens.RefreshExpiry.IsZero())
	require.WithinDuration(t, time.Now().Add(time.Hour), tokens.RefreshExpiry, 5*time.Second)

	// No extra field means zero expiry
	plain := tokensFrom(&oauth2.Token{AccessToken: "access"}, "refresh")
	require.True(t, plain.RefreshExpiry.IsZero())
}
