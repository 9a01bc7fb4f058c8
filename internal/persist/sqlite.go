package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lbliii/sunwell/internal/goal"
)

const sqliteDBName = "backlog.db"

const schema = `
CREATE TABLE IF NOT EXISTS goals (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	status   TEXT NOT NULL,
	doc      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	goal_id     TEXT NOT NULL,
	status      TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	doc         TEXT NOT NULL
);
`

// SQLiteStore persists the backlog in a SQLite database. Goals are
// stored as JSON documents with position and status lifted into
// columns for ad-hoc querying; SQLite's own locking covers
// cross-process safety.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the backlog database under
// the given state directory.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		filepath.Join(dir, sqliteDBName))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns all persisted goals in backlog order.
func (s *SQLiteStore) Load() ([]*goal.Goal, error) {
	rows, err := s.db.Query(`SELECT doc FROM goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		var g goal.Goal
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, fmt.Errorf("unmarshal goal doc: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal rows: %w", err)
	}
	return goals, nil
}

// Save replaces the persisted state with the given goals in a single
// transaction.
func (s *SQLiteStore) Save(goals []*goal.Goal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM goals`); err != nil {
		return fmt.Errorf("clear goals: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO goals (id, position, status, doc) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, g := range goals {
		doc, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal goal %s: %w", g.ID, err)
		}
		if _, err := stmt.Exec(g.ID, i, string(g.Status), string(doc)); err != nil {
			return fmt.Errorf("insert goal %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AppendHistory records a terminal goal in the history table.
func (s *SQLiteStore) AppendHistory(g *goal.Goal) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO history (goal_id, status, recorded_at, doc) VALUES (?, ?, ?, ?)`,
		g.ID, string(g.Status), time.Now().UTC().Format(time.RFC3339), string(doc),
	)
	if err != nil {
		return fmt.Errorf("insert history row: %w", err)
	}
	return nil
}

// History returns all recorded goals, oldest first.
func (s *SQLiteStore) History() ([]*goal.Goal, error) {
	rows, err := s.db.Query(`SELECT doc FROM history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var g goal.Goal
		if err := json.Unmarshal([]byte(doc), &g); err != nil {
			return nil, fmt.Errorf("unmarshal history doc: %w", err)
		}
		goals = append(goals, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return goals, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
