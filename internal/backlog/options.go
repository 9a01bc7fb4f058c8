package backlog

import (
	"path"
	"time"

	"github.com/lbliii/sunwell/internal/conflict"
	"github.com/lbliii/sunwell/internal/goal"
)

// ArtifactMatcher decides whether a produced artifact name satisfies a
// required name. The matching policy is configurable because required
// names may be written as exact strings or as patterns.
type ArtifactMatcher func(required, produced string) bool

// MatchExact satisfies a requirement only by an identical artifact name.
// This is the default.
func MatchExact(required, produced string) bool {
	return required == produced
}

// MatchGlob treats the required name as a path.Match pattern
// (e.g. "schema/*"). A malformed pattern falls back to exact matching.
func MatchGlob(required, produced string) bool {
	ok, err := path.Match(required, produced)
	if err != nil {
		return required == produced
	}
	return ok
}

// Option configures a Store.
type Option func(*Store)

// WithMatcher sets the artifact matching policy for the requires /
// produces channel.
func WithMatcher(m ArtifactMatcher) Option {
	return func(s *Store) {
		if m != nil {
			s.match = m
		}
	}
}

// WithDetector sets the conflict detector consulted on claim. Useful
// for sharing a detector with components that register out-of-band
// work.
func WithDetector(d *conflict.Detector) Option {
	return func(s *Store) {
		if d != nil {
			s.detector = d
		}
	}
}

// WithClaimFilter restricts which ready goals Claim may hand out.
// Goals rejected by the filter stay ready; they can still be driven
// through their lifecycle by other callers. Unattended runs use this
// to hand workers only auto-approvable goals.
func WithClaimFilter(f func(*goal.Goal) bool) Option {
	return func(s *Store) {
		s.claimable = f
	}
}

// WithClock overrides the time source. Tests use this to control lease
// expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
