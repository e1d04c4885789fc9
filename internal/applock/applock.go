// Package applock guards the playlist folder against concurrent
// mediadex processes. The history logs are append-only with no file
// locking of their own, so at most one process may mutate them.
package applock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Acquire takes the lock file inside dir, creating the folder if
// needed. It returns a release function, or an error when another
// process holds the lock.
func Acquire(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock folder: %w", err)
	}
	lock := flock.New(filepath.Join(dir, ".mediadex.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another mediadex process is using %s", dir)
	}
	return func() { _ = lock.Unlock() }, nil
}
