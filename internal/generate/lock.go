package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	ierrors "github.com/Aman-CERP/interlog/internal/errors"
)

// lockRetryDelay is how often a busy lock is polled.
const lockRetryDelay = 50 * time.Millisecond

// dirLock serializes generator runs on one package directory across
// processes, e.g. parallel go generate invocations. The lock file lives in
// the temp dir so package directories stay clean.
type dirLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

func newDirLock(dir string) (*dirLock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(os.TempDir(), "interlog", hex.EncodeToString(sum[:8])+".lock")
	return &dirLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}, nil
}

// Lock blocks until the lock is held or ctx is done.
func (l *dirLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return ierrors.New(ierrors.ErrCodeLockBusy, "acquire generation lock", err).
			WithDetail("lock", l.path)
	}
	l.locked = ok
	return nil
}

// Unlock releases the lock. It is safe to call on an unlocked lock.
func (l *dirLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
