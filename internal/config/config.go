package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete sunwell configuration
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Backlog   BacklogConfig   `mapstructure:"backlog"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Trust     TrustConfig     `mapstructure:"trust"`
	Store     StoreConfig     `mapstructure:"store"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SchedulerConfig controls the claim/lease protocol
type SchedulerConfig struct {
	// LeaseTTLMinutes is how long a claim is held before the lease is
	// considered abandoned and the goal is reclaimed (default: 15)
	LeaseTTLMinutes int `mapstructure:"lease_ttl_minutes"`
	// ReclaimIntervalSeconds is how often the background pass scans
	// for expired leases (default: 30)
	ReclaimIntervalSeconds int `mapstructure:"reclaim_interval_seconds"`
	// MaxRetries is how many times `run` automatically retries a failed
	// goal before it stays failed. Zero disables auto-retry (default: 0)
	MaxRetries int `mapstructure:"max_retries"`
}

// BacklogConfig controls admission and prioritization
type BacklogConfig struct {
	// MaxGoals caps the backlog size during admission (default: 20)
	MaxGoals int `mapstructure:"max_goals"`
	// PriorityThreshold drops candidate goals scoring below this value
	// during admission (default: 0.2)
	PriorityThreshold float64 `mapstructure:"priority_threshold"`
	// LeafBoost is added to the score of goals with no dependents,
	// favoring work that unblocks nothing and can ship immediately
	// (default: 0.1)
	LeafBoost float64 `mapstructure:"leaf_boost"`
}

// ArtifactsConfig controls how required artifacts match produced ones
type ArtifactsConfig struct {
	// MatchMode is "exact" or "glob" (default: "exact")
	MatchMode string `mapstructure:"match_mode"`
}

// TrustConfig controls which goals skip human approval
type TrustConfig struct {
	// Mode is "policy" (category/complexity gate), "allow_all", or
	// "deny_all" (default: "policy")
	Mode string `mapstructure:"mode"`
	// Categories that can be auto-approved (default: fix, test)
	Categories []string `mapstructure:"categories"`
	// Complexities that can be auto-approved (default: trivial, simple)
	Complexities []string `mapstructure:"complexities"`
}

// StoreConfig controls backlog persistence
type StoreConfig struct {
	// Backend is "json" or "sqlite" (default: "json")
	Backend string `mapstructure:"backend"`
	// Dir is the state directory (default: ".sunwell")
	Dir string `mapstructure:"dir"`
}

// WorkersConfig controls the execution loop
type WorkersConfig struct {
	// Count is the number of concurrent workers for `run` (default: 1)
	Count int `mapstructure:"count"`
	// Command is the executor command; it receives the claimed goal as
	// JSON on stdin and its exit status reports the outcome
	Command string `mapstructure:"command"`
	// PollIntervalSeconds is how often idle workers re-check for ready
	// goals when no wake signal arrives (default: 5)
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			LeaseTTLMinutes:        15,
			ReclaimIntervalSeconds: 30,
			MaxRetries:             0,
		},
		Backlog: BacklogConfig{
			MaxGoals:          20,
			PriorityThreshold: 0.2,
			LeafBoost:         0.1,
		},
		Artifacts: ArtifactsConfig{
			MatchMode: "exact",
		},
		Trust: TrustConfig{
			Mode:         "policy",
			Categories:   []string{"fix", "test"},
			Complexities: []string{"trivial", "simple"},
		},
		Store: StoreConfig{
			Backend: "json",
			Dir:     ".sunwell",
		},
		Workers: WorkersConfig{
			Count:               1,
			Command:             "",
			PollIntervalSeconds: 5,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// LeaseTTL returns the lease TTL as a time.Duration
func (c *SchedulerConfig) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLMinutes) * time.Minute
}

// ReclaimInterval returns the reclaim interval as a time.Duration
func (c *SchedulerConfig) ReclaimInterval() time.Duration {
	return time.Duration(c.ReclaimIntervalSeconds) * time.Second
}

// PollInterval returns the worker poll interval as a time.Duration
func (c *WorkersConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Scheduler defaults
	viper.SetDefault("scheduler.lease_ttl_minutes", defaults.Scheduler.LeaseTTLMinutes)
	viper.SetDefault("scheduler.reclaim_interval_seconds", defaults.Scheduler.ReclaimIntervalSeconds)
	viper.SetDefault("scheduler.max_retries", defaults.Scheduler.MaxRetries)

	// Backlog defaults
	viper.SetDefault("backlog.max_goals", defaults.Backlog.MaxGoals)
	viper.SetDefault("backlog.priority_threshold", defaults.Backlog.PriorityThreshold)
	viper.SetDefault("backlog.leaf_boost", defaults.Backlog.LeafBoost)

	// Artifacts defaults
	viper.SetDefault("artifacts.match_mode", defaults.Artifacts.MatchMode)

	// Trust defaults
	viper.SetDefault("trust.mode", defaults.Trust.Mode)
	viper.SetDefault("trust.categories", defaults.Trust.Categories)
	viper.SetDefault("trust.complexities", defaults.Trust.Complexities)

	// Store defaults
	viper.SetDefault("store.backend", defaults.Store.Backend)
	viper.SetDefault("store.dir", defaults.Store.Dir)

	// Workers defaults
	viper.SetDefault("workers.count", defaults.Workers.Count)
	viper.SetDefault("workers.command", defaults.Workers.Command)
	viper.SetDefault("workers.poll_interval_seconds", defaults.Workers.PollIntervalSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sunwell")
	}
	// Fall back to ~/.config/sunwell
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sunwell"
	}
	return filepath.Join(home, ".config", "sunwell")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
