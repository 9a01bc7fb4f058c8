// Package persist stores backlog state across process restarts.
//
// Two backends are provided: a JSON file store with flock(2) guarding
// and atomic temp-file-then-rename writes, and a SQLite store for
// workspaces that prefer a queryable database. Both serialize the same
// goal documents, so switching backends is a config change.
package persist

import (
	"fmt"

	"github.com/lbliii/sunwell/internal/goal"
)

// Supported backend names for Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open creates the store for the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Store loads and saves the full backlog state. Save always writes the
// complete goal set; partial updates are not supported because the
// resolver needs the whole graph to recompute readiness on load.
type Store interface {
	// Load returns all persisted goals in backlog order. A store that
	// has never been saved returns an empty slice and no error.
	Load() ([]*goal.Goal, error)

	// Save replaces the persisted state with the given goals.
	Save(goals []*goal.Goal) error

	// AppendHistory records a terminal goal in the append-only
	// completion history, kept separately from live state so completed
	// goals can be pruned from the backlog without losing the record.
	AppendHistory(g *goal.Goal) error

	// Close releases any resources held by the store.
	Close() error
}
