package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduler.lease_ttl_minutes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidMatchModes returns the list of valid artifact match modes
func ValidMatchModes() []string {
	return []string{"exact", "glob"}
}

// ValidTrustModes returns the list of valid trust modes
func ValidTrustModes() []string {
	return []string{"policy", "allow_all", "deny_all"}
}

// ValidStoreBackends returns the list of valid store backends
func ValidStoreBackends() []string {
	return []string{"json", "sqlite"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateScheduler()...)
	errors = append(errors, c.validateBacklog()...)
	errors = append(errors, c.validateArtifacts()...)
	errors = append(errors, c.validateTrust()...)
	errors = append(errors, c.validateStore()...)
	errors = append(errors, c.validateWorkers()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateScheduler validates the SchedulerConfig
func (c *Config) validateScheduler() []ValidationError {
	var errors []ValidationError

	if c.Scheduler.LeaseTTLMinutes <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.lease_ttl_minutes",
			Value:   c.Scheduler.LeaseTTLMinutes,
			Message: "must be positive",
		})
	}

	// Leases of many hours usually mean a typo; workers hold claims
	// for minutes at a time
	const maxLeaseTTLMinutes = 24 * 60
	if c.Scheduler.LeaseTTLMinutes > maxLeaseTTLMinutes {
		errors = append(errors, ValidationError{
			Field:   "scheduler.lease_ttl_minutes",
			Value:   c.Scheduler.LeaseTTLMinutes,
			Message: fmt.Sprintf("exceeds maximum of %d minutes", maxLeaseTTLMinutes),
		})
	}

	if c.Scheduler.ReclaimIntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.reclaim_interval_seconds",
			Value:   c.Scheduler.ReclaimIntervalSeconds,
			Message: "must be positive",
		})
	}

	if c.Scheduler.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.max_retries",
			Value:   c.Scheduler.MaxRetries,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateBacklog validates the BacklogConfig
func (c *Config) validateBacklog() []ValidationError {
	var errors []ValidationError

	if c.Backlog.MaxGoals <= 0 {
		errors = append(errors, ValidationError{
			Field:   "backlog.max_goals",
			Value:   c.Backlog.MaxGoals,
			Message: "must be positive",
		})
	}

	if c.Backlog.PriorityThreshold < 0 || c.Backlog.PriorityThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "backlog.priority_threshold",
			Value:   c.Backlog.PriorityThreshold,
			Message: "must be between 0.0 and 1.0",
		})
	}

	if c.Backlog.LeafBoost < 0 || c.Backlog.LeafBoost > 1 {
		errors = append(errors, ValidationError{
			Field:   "backlog.leaf_boost",
			Value:   c.Backlog.LeafBoost,
			Message: "must be between 0.0 and 1.0",
		})
	}

	return errors
}

// validateArtifacts validates the ArtifactsConfig
func (c *Config) validateArtifacts() []ValidationError {
	var errors []ValidationError

	if c.Artifacts.MatchMode != "" && !slices.Contains(ValidMatchModes(), c.Artifacts.MatchMode) {
		errors = append(errors, ValidationError{
			Field:   "artifacts.match_mode",
			Value:   c.Artifacts.MatchMode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidMatchModes(), ", ")),
		})
	}

	return errors
}

// validateTrust validates the TrustConfig
func (c *Config) validateTrust() []ValidationError {
	var errors []ValidationError

	if c.Trust.Mode != "" && !slices.Contains(ValidTrustModes(), c.Trust.Mode) {
		errors = append(errors, ValidationError{
			Field:   "trust.mode",
			Value:   c.Trust.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidTrustModes(), ", ")),
		})
	}

	return errors
}

// validateStore validates the StoreConfig
func (c *Config) validateStore() []ValidationError {
	var errors []ValidationError

	if c.Store.Backend != "" && !slices.Contains(ValidStoreBackends(), c.Store.Backend) {
		errors = append(errors, ValidationError{
			Field:   "store.backend",
			Value:   c.Store.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidStoreBackends(), ", ")),
		})
	}

	if c.Store.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "store.dir",
			Value:   c.Store.Dir,
			Message: "cannot be empty",
		})
	} else if strings.ContainsRune(c.Store.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "store.dir",
			Value:   c.Store.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateWorkers validates the WorkersConfig
func (c *Config) validateWorkers() []ValidationError {
	var errors []ValidationError

	const minWorkers = 1
	const maxWorkers = 64

	if c.Workers.Count < minWorkers {
		errors = append(errors, ValidationError{
			Field:   "workers.count",
			Value:   c.Workers.Count,
			Message: fmt.Sprintf("must be at least %d", minWorkers),
		})
	}
	if c.Workers.Count > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "workers.count",
			Value:   c.Workers.Count,
			Message: fmt.Sprintf("exceeds maximum of %d", maxWorkers),
		})
	}

	if c.Workers.PollIntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "workers.poll_interval_seconds",
			Value:   c.Workers.PollIntervalSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
