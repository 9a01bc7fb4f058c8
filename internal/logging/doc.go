// Package logging provides structured logging for sunwell.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for debugging and post-hoc analysis of
// scheduler runs. Every worker, claim, and resolver decision is logged
// with enough structure to reconstruct a run after the fact.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger]
// type uses Go's slog internally which is designed for concurrent
// access. The [RotatingWriter] type uses a mutex to protect file
// operations during rotation. Child loggers created via With* methods
// share the underlying writer safely.
//
// # Basic Usage
//
// Create a logger for a state directory:
//
//	logger, err := logging.New(".sunwell", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("goal claimed", "goal", "task-a1b2c3", "worker", "worker-1")
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	workerLog := logger.WithWorker("worker-1")
//	goalLog := workerLog.WithGoal("task-a1b2c3")
//
//	// All logs from goalLog include worker_id and goal_id
//	goalLog.Info("execution started")
//
// # Log Rotation
//
// Logs rotate when the file exceeds the configured size; rotated files
// are named debug.log.1, debug.log.2, etc., where .1 is the most
// recent backup. With compression enabled, rotated files become
// debug.log.1.gz.
//
// # Testing
//
// Use [Nop] to discard all log output in tests.
package logging
