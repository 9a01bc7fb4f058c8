package cmd

import (
	"fmt"

	"github.com/lbliii/sunwell/internal/backlog"
	"github.com/lbliii/sunwell/internal/config"
	"github.com/lbliii/sunwell/internal/goal"
	"github.com/lbliii/sunwell/internal/logging"
	"github.com/lbliii/sunwell/internal/persist"
	"github.com/lbliii/sunwell/internal/trust"
)

// backlogSession bundles everything a command needs to operate on the
// persisted backlog.
type backlogSession struct {
	cfg   *config.Config
	store *backlog.Store
	db    persist.Store
	log   *logging.Logger
}

// openSession loads config, opens the persistence backend, and
// rebuilds the in-memory backlog from it.
func openSession(opts ...backlog.Option) (*backlogSession, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logging.Nop()
	if cfg.Logging.Enabled {
		log, err = logging.New(cfg.Store.Dir, cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
	}

	db, err := persist.Open(cfg.Store.Backend, cfg.Store.Dir)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	goals, err := db.Load()
	if err != nil {
		db.Close()
		log.Close()
		return nil, fmt.Errorf("load backlog: %w", err)
	}

	opts = append([]backlog.Option{backlog.WithMatcher(matcherFor(cfg))}, opts...)
	store, err := backlog.NewFromGoals(goals, opts...)
	if err != nil {
		db.Close()
		log.Close()
		return nil, fmt.Errorf("rebuild backlog: %w", err)
	}

	return &backlogSession{cfg: cfg, store: store, db: db, log: log}, nil
}

// save persists the current backlog state.
func (s *backlogSession) save() error {
	if err := s.db.Save(s.store.Export()); err != nil {
		return fmt.Errorf("save backlog: %w", err)
	}
	return nil
}

// close releases the session's resources.
func (s *backlogSession) close() {
	_ = s.db.Close()
	_ = s.log.Close()
}

// matcherFor returns the artifact matcher selected by config.
func matcherFor(cfg *config.Config) backlog.ArtifactMatcher {
	if cfg.Artifacts.MatchMode == "glob" {
		return backlog.MatchGlob
	}
	return backlog.MatchExact
}

// policyFor returns the priority policy with weights overridden from
// config.
func policyFor(cfg *config.Config) *backlog.Policy {
	p := backlog.DefaultPolicy()
	p.MaxGoals = cfg.Backlog.MaxGoals
	p.PriorityThreshold = cfg.Backlog.PriorityThreshold
	p.LeafBoost = cfg.Backlog.LeafBoost
	return p
}

// trustPolicyFor returns the trust policy selected by config.
func trustPolicyFor(cfg *config.Config) trust.Policy {
	switch cfg.Trust.Mode {
	case "allow_all":
		return trust.AllowAll{}
	case "deny_all":
		return trust.DenyAll{}
	}

	p := &trust.CategoryPolicy{
		Categories:   make(map[goal.Category]bool, len(cfg.Trust.Categories)),
		Complexities: make(map[goal.Complexity]bool, len(cfg.Trust.Complexities)),
	}
	for _, c := range cfg.Trust.Categories {
		p.Categories[goal.Category(c)] = true
	}
	for _, c := range cfg.Trust.Complexities {
		p.Complexities[goal.Complexity(c)] = true
	}
	return p
}
