package config

import "strings"

// ProviderConfig describes the single external identity provider the gateway
// talks to. The provider is treated as an opaque OIDC token endpoint; all
// protocol details beyond issuer/client/scopes live in the provider package.
type ProviderConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "http://localhost:9090")
}

func (Provider) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "dashboard")
}

func (Provider) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Provider) GetScopes() []string {
	scopes := GetEnv("OIDC_SCOPES", "openid profile email offline_access")
	return strings.Fields(scopes)
}
