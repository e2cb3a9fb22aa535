package dupindex

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BuildLock serializes index builds. Two scans writing into the same index
// directory would interleave generations, so builders must hold this lock
// for the duration of a scan.
type BuildLock struct {
	path string
	lock *flock.Flock
}

// NewBuildLock prepares a lock file inside the index directory.
func NewBuildLock(indexDir string) *BuildLock {
	path := filepath.Join(indexDir, "build.lock")
	return &BuildLock{path: path, lock: flock.New(path)}
}

// Acquire takes the lock without blocking. It fails when another build
// holds it.
func (l *BuildLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return errors.New("another index build is already running")
	}
	return nil
}

// Release drops the lock.
func (l *BuildLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release build lock: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *BuildLock) Path() string {
	return l.path
}
