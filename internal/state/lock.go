package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/starford/lustro/internal/apperr"
)

// held tracks lock paths owned by this process. flock is per open file
// description, so without this registry a second Acquire from the same
// process would silently succeed.
var (
	heldMu sync.Mutex
	held   = map[string]bool{}
)

// Lock is an advisory flock scoping one state file to one active
// process. The kernel drops the flock on process exit, so an aborted run
// can never leave the scope locked.
type Lock struct {
	file *os.File
	path string
}

// LockPath derives the lock file path for a state file: the state path
// with its extension replaced by ".lock".
func LockPath(statePath string) string {
	ext := filepath.Ext(statePath)
	return strings.TrimSuffix(statePath, ext) + ".lock"
}

// Acquire takes a non-blocking exclusive lock scoped to statePath.
// If another run (or this process) already holds it, Acquire fails
// immediately with apperr.ErrLocked rather than waiting.
func Acquire(statePath string) (*Lock, error) {
	lockPath := LockPath(statePath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("state: mkdir for lock: %w", err)
	}

	heldMu.Lock()
	if held[lockPath] {
		heldMu.Unlock()
		return nil, fmt.Errorf("state: lock %s: %w", lockPath, apperr.ErrLocked)
	}
	heldMu.Unlock()

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("state: open lock %s: %w", lockPath, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("state: lock %s: %w", lockPath, apperr.ErrLocked)
	}

	heldMu.Lock()
	held[lockPath] = true
	heldMu.Unlock()

	return &Lock{file: f, path: lockPath}, nil
}

// Release unlocks and removes the lock file. Safe to call once per
// acquired lock on every exit path.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
	l.file = nil

	heldMu.Lock()
	delete(held, l.path)
	heldMu.Unlock()
}
