package cmd

import (
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lbliii/sunwell/internal/backlog"
	"github.com/lbliii/sunwell/internal/event"
	"github.com/lbliii/sunwell/internal/goal"
	"github.com/lbliii/sunwell/internal/persist"
	"github.com/lbliii/sunwell/internal/scheduler"
	"github.com/lbliii/sunwell/internal/trust"
	"github.com/lbliii/sunwell/internal/watch"
	"github.com/lbliii/sunwell/internal/worker"
)

var runFlags struct {
	workers int
	command string
	all     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run workers against the backlog",
	Long: `Start a worker pool that claims ready goals, executes each one
with the configured worker command, and records outcomes. Only
trust-approved goals are claimed unless --all is given. Runs until
interrupted.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runFlags.workers, "workers", 0, "worker count (default from config)")
	runCmd.Flags().StringVar(&runFlags.command, "command", "", "worker command (default from config)")
	runCmd.Flags().BoolVar(&runFlags.all, "all", false, "claim all ready goals, ignoring the trust policy")
}

func runRun(cmd *cobra.Command, args []string) error {
	// The trust policy is bound after the session loads config; until
	// then the filter admits everything.
	var policy trust.Policy
	filter := func(g *goal.Goal) bool {
		if policy == nil {
			return true
		}
		return policy.IsAutoApprovable(g)
	}

	sess, err := openSession(backlog.WithClaimFilter(filter))
	if err != nil {
		return err
	}
	defer sess.close()

	cfg := sess.cfg
	if !runFlags.all {
		policy = trustPolicyFor(cfg)
	}

	command := cfg.Workers.Command
	if runFlags.command != "" {
		command = runFlags.command
	}
	if command == "" {
		return fmt.Errorf("no worker command: set workers.command or pass --command")
	}

	count := cfg.Workers.Count
	if runFlags.workers > 0 {
		count = runFlags.workers
	}

	bus := event.NewBus()
	es := backlog.NewEventStore(sess.store, bus)
	sched := scheduler.New(es,
		scheduler.WithLeaseTTL(cfg.Scheduler.LeaseTTL()),
		scheduler.WithReclaimInterval(cfg.Scheduler.ReclaimInterval()),
		scheduler.WithLogger(sess.log),
	)

	// Serialize persistence: release hooks and the reclaim loop both
	// write the backlog file.
	var saveMu sync.Mutex
	persistState := func() {
		saveMu.Lock()
		defer saveMu.Unlock()
		if err := sess.save(); err != nil {
			sess.log.Error("persist failed", "error", err.Error())
		}
	}

	bus.Subscribe("goal.released", func(ev event.Event) {
		rel, ok := ev.(event.GoalReleasedEvent)
		if !ok {
			return
		}
		g, err := sess.store.Get(rel.GoalID)
		if err != nil {
			return
		}
		// Failed is not terminal (it can be retried), but a final
		// failure still belongs in the history.
		if !g.Status.IsTerminal() && g.Status != goal.StatusFailed {
			return
		}
		if g.Status == goal.StatusFailed && g.RetryCount < cfg.Scheduler.MaxRetries {
			if err := es.Retry(g.ID); err == nil {
				sess.log.Info("auto-retrying failed goal",
					"goal_id", g.ID, "attempt", g.RetryCount+1)
				return
			}
		}
		if err := sess.db.AppendHistory(g); err != nil {
			sess.log.Warn("history append failed", "goal_id", g.ID, "error", err.Error())
		}
	})
	bus.Subscribe("lease.reclaimed", func(event.Event) {
		persistState()
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// External mutations of the JSON backlog file (another sunwell
	// invocation) are folded back into the running store.
	if fs, ok := sess.db.(*persist.FileStore); ok {
		w, err := watch.New(fs.Path(), sess.log)
		if err != nil {
			sess.log.Warn("file watch unavailable", "error", err.Error())
		} else {
			w.Start()
			defer w.Stop()
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-w.Changes():
						goals, err := sess.db.Load()
						if err != nil {
							sess.log.Warn("reload failed", "error", err.Error())
							continue
						}
						if err := es.Reload(goals); err != nil {
							sess.log.Warn("reload rejected", "error", err.Error())
						}
					}
				}
			}()
		}
	}

	exec := &worker.CommandExecutor{
		Command: command,
		Timeout: cfg.Scheduler.LeaseTTL(),
	}
	pool := worker.NewPool(count, sched, exec, bus,
		worker.WithPollInterval(cfg.Workers.PollInterval()),
		worker.WithRunnerLogger(sess.log),
		worker.WithReleaseHook(persistState),
	)

	go sched.Run(ctx)

	sess.log.Info("worker pool starting",
		"workers", pool.Size(), "lease_ttl", cfg.Scheduler.LeaseTTL().String())
	fmt.Printf("running %d workers (ctrl-c to stop)\n", pool.Size())

	pool.Run(ctx)
	persistState()

	counts := sess.store.Status()
	fmt.Printf("stopped: %d completed, %d failed, %d remaining\n",
		counts.Completed, counts.Failed,
		counts.Pending+counts.Ready+counts.Blocked)
	return nil
}
