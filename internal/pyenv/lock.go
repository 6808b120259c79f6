package pyenv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between attempts to acquire the
// bootstrap lock while another launcher holds it.
const lockRetryInterval = 50 * time.Millisecond

func acquireLock(ctx context.Context, path string) (*flock.Flock, error) {
	fl := flock.New(path)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring bootstrap lock %s: %w", path, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring bootstrap lock %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring bootstrap lock %s: lock not acquired", path)
	}
	return fl, nil
}

// releaseLock unlocks and closes the lock file. The file itself stays on
// disk: removing it could invalidate a lock concurrently acquired by
// another launcher.
func releaseLock(log *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		log.Debug("failed to release bootstrap lock", "path", fl.Path(), "err", err)
	}
}
