// Package historywriter appends completed-command records to ~/.fig/history
// as YAML documents, serialized across concurrent figterm sessions with an
// advisory file lock.
package historywriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Entry is one completed-command record.
type Entry struct {
	ID          string    `yaml:"id"`
	Command     string    `yaml:"command"`
	Shell       string    `yaml:"shell"`
	PID         int       `yaml:"pid"`
	SessionID   string    `yaml:"sessionId"`
	Cwd         string    `yaml:"cwd"`
	When        time.Time `yaml:"when"`
	InSSH       bool      `yaml:"inSsh"`
	InDocker    bool      `yaml:"inDocker"`
	Hostname    string    `yaml:"hostname"`
	ExitCode    int       `yaml:"exitCode,omitempty"`
	HasExitCode bool      `yaml:"-"`
}

// Writer appends Entry records to a single history file, one YAML document
// per entry, guarded by an advisory lock so multiple figterm sessions
// sharing the file don't interleave writes.
type Writer struct {
	path string
	lock *flock.Flock
}

// DefaultPath returns ~/.fig/history for the given home directory.
func DefaultPath(home string) string {
	return filepath.Join(home, ".fig", "history")
}

// New builds a Writer for the history file at path. The containing
// directory is created if missing.
func New(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("historywriter: %w", err)
	}
	return &Writer{path: path, lock: flock.New(path + ".lock")}, nil
}

// Append writes one entry as a YAML document, taking the advisory lock for
// the duration of the write. Failure is soft: the caller logs and drops
// the error rather than treating it as fatal to the session.
func (w *Writer) Append(e Entry) error {
	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("historywriter: lock: %w", err)
	}
	if !locked {
		// Another session holds the lock; block until it is released
		// rather than drop the entry outright.
		if err := w.lock.Lock(); err != nil {
			return fmt.Errorf("historywriter: lock: %w", err)
		}
	}
	defer w.lock.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("historywriter: open: %w", err)
	}
	defer f.Close()

	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("historywriter: marshal: %w", err)
	}
	if _, err := f.Write(append([]byte("---\n"), data...)); err != nil {
		return fmt.Errorf("historywriter: write: %w", err)
	}
	return nil
}
