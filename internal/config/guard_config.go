package config

import "strings"

// GuardConfig configures the route guard: which paths bypass authentication
// entirely and where unauthenticated or failed requests are sent.
type GuardConfig interface {
	GetPublicPaths() []string
	GetSignInPath() string
	GetErrorPath() string
	GetDefaultReturnPath() string
	GetEnableRateLimiting() bool
	GetAuthRateLimit() float64
	GetAuthRateBurst() int
}

type Guard struct{}

var _ GuardConfig = Guard{}

// GetPublicPaths returns the allow-list of paths exempt from the route guard.
// Entries ending in "*" are prefix matches, everything else is exact.
func (Guard) GetPublicPaths() []string {
	raw := GetEnv("PUBLIC_PATHS", "/signin, /auth/*, /callback, /error, /healthz, /static/*")
	parts := strings.Split(raw, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (Guard) GetSignInPath() string {
	return "/signin"
}

func (Guard) GetErrorPath() string {
	return "/error"
}

// GetDefaultReturnPath is where a completed login lands when the flow carries
// no return path.
func (Guard) GetDefaultReturnPath() string {
	return "/"
}

func (Guard) GetEnableRateLimiting() bool {
	return GetEnv("RATE_LIMIT_ENABLED", "true") == "true"
}

// GetAuthRateLimit is requests per second per client on auth endpoints.
func (Guard) GetAuthRateLimit() float64 {
	return 5
}

func (Guard) GetAuthRateBurst() int {
	return 10
}
