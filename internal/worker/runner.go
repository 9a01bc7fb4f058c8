package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lbliii/sunwell/internal/event"
	"github.com/lbliii/sunwell/internal/goal"
	"github.com/lbliii/sunwell/internal/logging"
	"github.com/lbliii/sunwell/internal/scheduler"
)

// Runner is a single worker loop: claim a ready goal, execute it,
// release with the outcome, repeat. When no goal is claimable it waits
// for a ready-set wake signal from the event bus, falling back to a
// poll tick so externally produced work is never missed.
type Runner struct {
	id    string
	sched *scheduler.Scheduler
	exec  Executor
	bus   *event.Bus
	poll  time.Duration
	log   *logging.Logger

	// onRelease runs after each successful release. The run command
	// uses it to persist state after every outcome.
	onRelease func()
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPollInterval sets how often an idle runner re-checks for work.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithRunnerLogger sets the structured logger.
func WithRunnerLogger(log *logging.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log.WithWorker(r.id)
		}
	}
}

// WithReleaseHook registers a callback invoked after every release.
func WithReleaseHook(fn func()) RunnerOption {
	return func(r *Runner) {
		r.onRelease = fn
	}
}

// NewRunner creates a Runner that claims through sched and executes
// with exec. The bus supplies the wake signal; it may be nil, in which
// case the runner relies on polling alone.
func NewRunner(id string, sched *scheduler.Scheduler, exec Executor, bus *event.Bus, opts ...RunnerOption) *Runner {
	r := &Runner{
		id:    id,
		sched: sched,
		exec:  exec,
		bus:   bus,
		poll:  5 * time.Second,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the runner's worker ID.
func (r *Runner) ID() string { return r.id }

// Run executes goals until the context is canceled. When nothing is
// claimable it parks until a ready-set change or the next poll tick;
// a drained backlog does not stop the loop, since releases elsewhere
// can make new work claimable.
func (r *Runner) Run(ctx context.Context) error {
	wake := make(chan struct{}, 1)
	if r.bus != nil {
		subID := r.bus.Subscribe(event.TypeReadyChanged, func(event.Event) {
			select {
			case wake <- struct{}{}:
			default:
			}
		})
		defer r.bus.Unsubscribe(subID)
	}

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		g, err := r.sched.Claim(r.id)
		if err != nil {
			return err
		}

		if g == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wake:
			case <-ticker.C:
			}
			continue
		}

		r.execute(ctx, g)
	}
}

// execute runs one claimed goal and reports its outcome.
func (r *Runner) execute(ctx context.Context, g *goal.Goal) {
	log := r.log.WithGoal(g.ID)
	log.Info("executing goal", "title", g.Title)

	result, err := r.exec.Execute(ctx, g)
	if err != nil {
		// Execution could not even be attempted; report failure so
		// the resolver can block dependents and a retry stays possible.
		log.Error("executor error", "error", err.Error())
		result = &goal.Result{Success: false, FailureReason: err.Error()}
	}

	outcome := goal.OutcomeFailure
	failureContext := result.FailureReason
	if result.Success {
		outcome = goal.OutcomeSuccess
		failureContext = ""
	}

	if err := r.sched.Release(g.ID, r.id, outcome, failureContext); err != nil {
		log.Error("release failed", "error", err.Error())
		return
	}

	log.Info("goal finished", "outcome", outcome.String(), "duration", result.Duration.String())
	if r.onRelease != nil {
		r.onRelease()
	}
}

// Pool runs a fixed set of runners concurrently.
type Pool struct {
	runners []*Runner
}

// NewPool creates count runners with IDs worker-1..worker-N, all
// sharing the same scheduler, executor, and bus.
func NewPool(count int, sched *scheduler.Scheduler, exec Executor, bus *event.Bus, opts ...RunnerOption) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{}
	for i := 1; i <= count; i++ {
		id := workerID(i)
		p.runners = append(p.runners, NewRunner(id, sched, exec, bus, opts...))
	}
	return p
}

// Run starts all runners and blocks until every one has stopped.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range p.runners {
		wg.Add(1)
		go func(r *Runner) {
			defer wg.Done()
			_ = r.Run(ctx)
		}(r)
	}
	wg.Wait()
}

// Size returns the number of runners in the pool.
func (p *Pool) Size() int { return len(p.runners) }

func workerID(n int) string {
	return "worker-" + strconv.Itoa(n)
}
