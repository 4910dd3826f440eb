package config

import (
	"strconv"
	"time"
)

type SessionConfig interface {
	GetRefreshMargin() time.Duration
	GetMaxSessionAge() time.Duration
	GetAuthFlowTimeout() time.Duration
	GetSessionIDLength() int
	GetStoreKeySecret() string

	GetMaxRefreshAttempts() int
	GetRefreshBackoff() time.Duration
	GetProviderTimeout() time.Duration
	GetRefreshWaitTimeout() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetRefreshMargin is the safety margin before access-token expiry at which
// a refresh is triggered.
func (Session) GetRefreshMargin() time.Duration {
	return getEnvDuration("REFRESH_MARGIN", 30*time.Second)
}

// GetMaxSessionAge is the absolute session ceiling. A session is destroyed
// once this elapses regardless of refresh success.
func (Session) GetMaxSessionAge() time.Duration {
	return getEnvDuration("MAX_SESSION_AGE", 8*time.Hour)
}

// GetAuthFlowTimeout bounds how long an issued state/nonce pair stays valid
// while the user completes the provider's login page.
func (Session) GetAuthFlowTimeout() time.Duration {
	return 15 * time.Minute
}

func (Session) GetSessionIDLength() int {
	return 32 // 32 bytes = 256 bits
}

// GetStoreKeySecret keys the hash applied to session IDs before they are used
// as store keys, so a store dump cannot be replayed as cookies.
func (Session) GetStoreKeySecret() string {
	return GetEnv("STORE_KEY_SECRET", "")
}

func (Session) GetMaxRefreshAttempts() int {
	return 3
}

func (Session) GetRefreshBackoff() time.Duration {
	return 250 * time.Millisecond
}

// GetProviderTimeout bounds a single call to the provider token endpoint.
func (Session) GetProviderTimeout() time.Duration {
	return getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
}

// GetRefreshWaitTimeout bounds how long a caller waits on a shared in-flight
// refresh. It is deliberately distinct from the provider-call timeout so a
// stuck provider call cannot wedge an unbounded number of waiters.
func (Session) GetRefreshWaitTimeout() time.Duration {
	return getEnvDuration("REFRESH_WAIT_TIMEOUT", 15*time.Second)
}

func getEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
