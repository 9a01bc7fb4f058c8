// Package scheduler implements the claim/lease protocol on top of the
// backlog store.
//
// Any number of workers call Claim and Release concurrently; the store
// serializes the underlying mutations, so no two workers ever receive
// the same goal. A claim carries a lease: if the worker does not
// release within the lease TTL, the background reclaim pass resets the
// goal to pending and another worker may claim it. Releases that arrive
// after reclaim are absorbed as no-ops so a slow worker can never
// corrupt state.
package scheduler

import (
	"context"
	"time"

	"github.com/lbliii/sunwell/internal/errors"
	"github.com/lbliii/sunwell/internal/goal"
	"github.com/lbliii/sunwell/internal/logging"
)

// Default lease handling. Both are configurable; the defaults assume
// goal execution on the order of minutes.
const (
	DefaultLeaseTTL        = 15 * time.Minute
	DefaultReclaimInterval = 30 * time.Second
)

// Backlog is the store surface the scheduler drives. Satisfied by both
// backlog.Store and backlog.EventStore.
type Backlog interface {
	Claim(workerID string, ttl time.Duration) (*goal.Goal, error)
	Release(goalID, workerID string, outcome goal.Outcome, failureContext string) error
	ReclaimExpired(now time.Time) []string
}

// Scheduler hands out at-most-one-claimant leases over ready goals.
type Scheduler struct {
	backlog         Backlog
	leaseTTL        time.Duration
	reclaimInterval time.Duration
	log             *logging.Logger
	now             func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLeaseTTL sets how long a claim is held before it is considered
// abandoned.
func WithLeaseTTL(ttl time.Duration) Option {
	return func(s *Scheduler) {
		if ttl > 0 {
			s.leaseTTL = ttl
		}
	}
}

// WithReclaimInterval sets how often the background pass scans for
// expired leases.
func WithReclaimInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.reclaimInterval = interval
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scheduler over the given backlog.
func New(b Backlog, opts ...Option) *Scheduler {
	s := &Scheduler{
		backlog:         b,
		leaseTTL:        DefaultLeaseTTL,
		reclaimInterval: DefaultReclaimInterval,
		log:             logging.Nop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LeaseTTL returns the configured lease duration.
func (s *Scheduler) LeaseTTL() time.Duration {
	return s.leaseTTL
}

// Claim returns the next claimable goal for the worker, or nil when no
// eligible goal exists. It never blocks waiting for work; callers poll
// or wait on the event bus.
func (s *Scheduler) Claim(workerID string) (*goal.Goal, error) {
	g, err := s.backlog.Claim(workerID, s.leaseTTL)
	if err != nil {
		return nil, err
	}
	if g != nil {
		s.log.Info("goal claimed", "goal", g.ID, "worker", workerID,
			"lease_expires", g.Claim.ExpiresAt)
	}
	return g, nil
}

// Release reports a worker's outcome for a claimed goal. A release
// arriving after the lease was reclaimed is logged and absorbed; the
// worker's report is simply too late to matter.
func (s *Scheduler) Release(goalID, workerID string, outcome goal.Outcome, failureContext string) error {
	err := s.backlog.Release(goalID, workerID, outcome, failureContext)
	if err != nil {
		if errors.Is(err, errors.ErrLeaseExpired) {
			s.log.Warn("stale release ignored", "goal", goalID, "worker", workerID,
				"outcome", outcome.String())
			return nil
		}
		return err
	}
	s.log.Info("goal released", "goal", goalID, "worker", workerID, "outcome", outcome.String())
	return nil
}

// Reclaim performs one reclaim pass as of now, returning the IDs of
// goals whose leases had lapsed.
func (s *Scheduler) Reclaim() []string {
	reclaimed := s.backlog.ReclaimExpired(s.now())
	if len(reclaimed) > 0 {
		s.log.Warn("expired leases reclaimed", "goals", reclaimed)
	}
	return reclaimed
}

// Run drives the background reclaim pass until the context is
// canceled. Claim and Release remain callable from any goroutine while
// Run is active.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.reclaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reclaim()
		}
	}
}
