// Package releaselock serializes publish invocations that share a storage root.
package releaselock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/temirov/gamerelease/internal/failures"
)

const (
	// DefaultLockFileName is created inside the storage root.
	DefaultLockFileName = ".gamerelease.lock"

	lockOperationConstant            = "acquire publish lock"
	lockHeldMessageConstant          = "another publish is already running"
	lockFailedMessageConstant        = "publish lock could not be acquired"
	lockRetryDelayConstant           = 100 * time.Millisecond
	lockDirectoryPermissionsConstant = 0o755
)

// ErrLockHeld indicates another process holds the publish lock.
var ErrLockHeld = errors.New(lockHeldMessageConstant)

// Lock is a held publish lock.
type Lock struct {
	fileLock *flock.Flock
}

// Acquire takes the exclusive lock at path. With a zero timeout it fails
// immediately when the lock is held; otherwise it retries until the timeout
// elapses or the context is cancelled.
func Acquire(executionContext context.Context, path string, timeout time.Duration) (*Lock, error) {
	if mkdirError := os.MkdirAll(filepath.Dir(path), lockDirectoryPermissionsConstant); mkdirError != nil {
		return nil, failures.Wrap(failures.KindConfiguration, lockOperationConstant, path, lockFailedMessageConstant, mkdirError)
	}

	fileLock := flock.New(path)

	var locked bool
	var lockError error
	if timeout <= 0 {
		locked, lockError = fileLock.TryLock()
	} else {
		waitContext, cancel := context.WithTimeout(executionContext, timeout)
		defer cancel()
		locked, lockError = fileLock.TryLockContext(waitContext, lockRetryDelayConstant)
		if errors.Is(lockError, context.DeadlineExceeded) {
			lockError = nil
		}
	}

	if lockError != nil {
		return nil, failures.Wrap(failures.KindPrecondition, lockOperationConstant, path, lockFailedMessageConstant, lockError)
	}
	if !locked {
		return nil, failures.Wrap(failures.KindPrecondition, lockOperationConstant, path, lockHeldMessageConstant, ErrLockHeld)
	}
	return &Lock{fileLock: fileLock}, nil
}

// Path returns the lock file location.
func (lock *Lock) Path() string {
	if lock == nil || lock.fileLock == nil {
		return ""
	}
	return lock.fileLock.Path()
}

// Release unlocks. The lock file itself is left in place.
func (lock *Lock) Release() error {
	if lock == nil || lock.fileLock == nil {
		return nil
	}
	return lock.fileLock.Unlock()
}
