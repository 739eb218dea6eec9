package service

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// HostAllowlist permits fetching from hosts matching a regular expression. Matching is
// unanchored; anchor the pattern to require a full match.
type HostAllowlist struct {
	pattern *regexp.Regexp
}

func NewHostAllowlist(pattern string) (*HostAllowlist, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed hosts pattern %q: %w", pattern, err)
	}

	return &HostAllowlist{pattern: re}, nil
}

func (a *HostAllowlist) IsAllowed(host string) bool {
	if host == "" {
		return false
	}

	if a.pattern.MatchString(host) {
		return true
	}

	log.Debug().Str("host", host).Str("pattern", a.pattern.String()).Msg("host rejected by allowlist")

	return false
}

func (a *HostAllowlist) String() string {
	return a.pattern.String()
}
