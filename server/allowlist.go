package server

import "strings"

// Allowlist enumerates paths exempt from the route guard. Two pattern forms
// are recognized: exact paths ("/healthz") and prefix patterns ("/static/*").
type Allowlist struct {
	exact    map[string]struct{}
	prefixes []string
}

func NewAllowlist(patterns []string) *Allowlist {
	a := &Allowlist{exact: make(map[string]struct{})}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			a.prefixes = append(a.prefixes, strings.TrimSuffix(p, "*"))
			continue
		}
		a.exact[p] = struct{}{}
	}
	return a
}

// Matches reports whether path is public.
func (a *Allowlist) Matches(path string) bool {
	if _, ok := a.exact[path]; ok {
		return true
	}
	for _, prefix := range a.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
