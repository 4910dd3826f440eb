package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-gateway/internal/config"
)

func TestGetPortFormatsListenAddress(t *testing.T) {
	t.Setenv("PORT", "9000")
	c := config.New()
	require.Equal(t, ":9000", c.GetPort())

	t.Setenv("PORT", ":9001")
	require.Equal(t, ":9001", c.GetPort())
}

func TestDefaults(t *testing.T) {
	c := config.New()

	require.Equal(t, 30*time.Second, c.GetRefreshMargin())
	require.Equal(t, 8*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 15*time.Minute, c.GetAuthFlowTimeout())
	require.Equal(t, 3, c.GetMaxRefreshAttempts())
	require.Equal(t, 250*time.Millisecond, c.GetRefreshBackoff())
	require.Equal(t, "/signin", c.GetSignInPath())
	require.Equal(t, "/error", c.GetErrorPath())
	require.Empty(t, c.GetRedisAddr())
}

func TestDurationOverrides(t *testing.T) {
	t.Setenv("REFRESH_MARGIN", "45s")
	t.Setenv("MAX_SESSION_AGE", "3600") // bare integers are seconds

	c := config.New()
	require.Equal(t, 45*time.Second, c.GetRefreshMargin())
	require.Equal(t, time.Hour, c.GetMaxSessionAge())
}

func TestDurationOverrideInvalidFallsBack(t *testing.T) {
	t.Setenv("REFRESH_MARGIN", "soon")

	c := config.New()
	require.Equal(t, 30*time.Second, c.GetRefreshMargin())
}

func TestPublicPathsParsing(t *testing.T) {
	t.Setenv("PUBLIC_PATHS", " /signin , /assets/* ,, /ping ")

	c := config.New()
	require.Equal(t, []string{"/signin", "/assets/*", "/ping"}, c.GetPublicPaths())
}

func TestProviderConfigFromEnv(t *testing.T) {
	t.Setenv("OIDC_ISSUER_URL", "https://issuer.example.com")
	t.Setenv("OIDC_CLIENT_ID", "gateway")
	t.Setenv("OIDC_CLIENT_SECRET", "s3cret")
	t.Setenv("OIDC_SCOPES", "openid profile email offline_access")

	c := config.New()
	require.Equal(t, "https://issuer.example.com", c.GetIssuerURL())
	require.Equal(t, "gateway", c.GetClientID())
	require.Equal(t, "s3cret", c.GetClientSecret())
	require.Equal(t, []string{"openid", "profile", "email", "offline_access"}, c.GetScopes())
}
