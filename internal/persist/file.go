package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lbliii/sunwell/internal/goal"
)

const (
	stateFileName   = "backlog.json"
	historyFileName = "completed.jsonl"
)

// persistedState is the serializable representation of the backlog.
// Goals carry backlog order in the slice itself.
type persistedState struct {
	Version int          `json:"version"`
	SavedAt time.Time    `json:"saved_at"`
	Goals   []*goal.Goal `json:"goals"`
}

const stateVersion = 1

// FileStore persists the backlog as JSON under a state directory.
// Writes are atomic: data goes to a temporary file first, then is
// renamed into place. A file lock is held around every operation for
// cross-process safety.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the backlog state file path. Watchers observe this file
// to detect external mutations.
func (fs *FileStore) Path() string {
	return filepath.Join(fs.dir, stateFileName)
}

// Load reads the persisted backlog. A missing state file is not an
// error; it returns an empty slice.
func (fs *FileStore) Load() ([]*goal.Goal, error) {
	fl := NewFileLock(fs.dir)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(fs.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return []*goal.Goal{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal backlog state: %w", err)
	}
	if state.Goals == nil {
		state.Goals = []*goal.Goal{}
	}
	return state.Goals, nil
}

// Save writes the full backlog state atomically.
func (fs *FileStore) Save(goals []*goal.Goal) error {
	fl := NewFileLock(fs.dir)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := json.MarshalIndent(persistedState{
		Version: stateVersion,
		SavedAt: time.Now().UTC(),
		Goals:   goals,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backlog state: %w", err)
	}

	target := fs.Path()
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// AppendHistory appends the goal as one JSON line to completed.jsonl.
func (fs *FileStore) AppendHistory(g *goal.Goal) error {
	fl := NewFileLock(fs.dir)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal goal: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(fs.dir, historyFileName),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// History returns all goals recorded in the completion history, oldest
// first. A missing history file returns an empty slice.
func (fs *FileStore) History() ([]*goal.Goal, error) {
	data, err := os.ReadFile(filepath.Join(fs.dir, historyFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return []*goal.Goal{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var goals []*goal.Goal
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var g goal.Goal
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		goals = append(goals, &g)
	}
	if goals == nil {
		goals = []*goal.Goal{}
	}
	return goals, nil
}

// Close is a no-op for FileStore; no resources are held between calls.
func (fs *FileStore) Close() error { return nil }
