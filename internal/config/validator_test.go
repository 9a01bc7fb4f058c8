package config

import (
	"strings"
	"testing"
)

// validConfig returns a fully valid config for mutation in tests.
func validConfig() *Config {
	return Default()
}

func TestValidateScheduler(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero lease ttl",
			mutate:  func(c *Config) { c.Scheduler.LeaseTTLMinutes = 0 },
			wantErr: "scheduler.lease_ttl_minutes",
		},
		{
			name:    "negative lease ttl",
			mutate:  func(c *Config) { c.Scheduler.LeaseTTLMinutes = -5 },
			wantErr: "scheduler.lease_ttl_minutes",
		},
		{
			name:    "lease ttl over a day",
			mutate:  func(c *Config) { c.Scheduler.LeaseTTLMinutes = 100000 },
			wantErr: "scheduler.lease_ttl_minutes",
		},
		{
			name:    "zero reclaim interval",
			mutate:  func(c *Config) { c.Scheduler.ReclaimIntervalSeconds = 0 },
			wantErr: "scheduler.reclaim_interval_seconds",
		},
		{
			name:    "negative max retries",
			mutate:  func(c *Config) { c.Scheduler.MaxRetries = -1 },
			wantErr: "scheduler.max_retries",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assertFieldError(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestValidateBacklog(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max goals",
			mutate:  func(c *Config) { c.Backlog.MaxGoals = 0 },
			wantErr: "backlog.max_goals",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Backlog.PriorityThreshold = 1.5 },
			wantErr: "backlog.priority_threshold",
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.Backlog.PriorityThreshold = -0.1 },
			wantErr: "backlog.priority_threshold",
		},
		{
			name:    "leaf boost above one",
			mutate:  func(c *Config) { c.Backlog.LeafBoost = 2 },
			wantErr: "backlog.leaf_boost",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assertFieldError(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestValidateEnums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad match mode",
			mutate:  func(c *Config) { c.Artifacts.MatchMode = "regex" },
			wantErr: "artifacts.match_mode",
		},
		{
			name:    "bad trust mode",
			mutate:  func(c *Config) { c.Trust.Mode = "everything" },
			wantErr: "trust.mode",
		},
		{
			name:    "bad store backend",
			mutate:  func(c *Config) { c.Store.Backend = "postgres" },
			wantErr: "store.backend",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "logging.level",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assertFieldError(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestValidateEmptyEnumsAllowed(t *testing.T) {
	// Empty enum values fall back to defaults at use sites and are not
	// validation errors.
	cfg := validConfig()
	cfg.Artifacts.MatchMode = ""
	cfg.Trust.Mode = ""
	cfg.Store.Backend = ""
	cfg.Logging.Level = ""

	for _, err := range cfg.Validate() {
		switch err.Field {
		case "artifacts.match_mode", "trust.mode", "store.backend", "logging.level":
			t.Errorf("empty %s should not be a validation error", err.Field)
		}
	}
}

func TestValidateStore(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Dir = ""
	assertFieldError(t, cfg.Validate(), "store.dir")

	cfg = validConfig()
	cfg.Store.Dir = "bad\x00dir"
	assertFieldError(t, cfg.Validate(), "store.dir")
}

func TestValidateWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers.Count = 0
	assertFieldError(t, cfg.Validate(), "workers.count")

	cfg = validConfig()
	cfg.Workers.Count = 1000
	assertFieldError(t, cfg.Validate(), "workers.count")

	cfg = validConfig()
	cfg.Workers.PollIntervalSeconds = 0
	assertFieldError(t, cfg.Validate(), "workers.poll_interval_seconds")
}

func TestValidateLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.MaxSizeMB = 0
	assertFieldError(t, cfg.Validate(), "logging.max_size_mb")

	cfg = validConfig()
	cfg.Logging.MaxSizeMB = 5000
	assertFieldError(t, cfg.Validate(), "logging.max_size_mb")

	cfg = validConfig()
	cfg.Logging.MaxBackups = -1
	assertFieldError(t, cfg.Validate(), "logging.max_backups")
}

func TestValidationErrorsError(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("empty ValidationErrors.Error() = %q, want empty", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{{Field: "a.b", Value: 1, Message: "bad"}}
		got := errs.Error()
		if !strings.Contains(got, "a.b") || !strings.Contains(got, "bad") {
			t.Errorf("Error() = %q, want field and message", got)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "a.b", Value: 1, Message: "bad"},
			{Field: "c.d", Value: 2, Message: "worse"},
		}
		got := errs.Error()
		if !strings.Contains(got, "2 validation errors") {
			t.Errorf("Error() = %q, want count header", got)
		}
	})
}

// assertFieldError fails unless errs contains an error for the field.
func assertFieldError(t *testing.T, errs []ValidationError, field string) {
	t.Helper()
	for _, err := range errs {
		if err.Field == field {
			return
		}
	}
	t.Errorf("expected validation error for %s, got %v", field, errs)
}
