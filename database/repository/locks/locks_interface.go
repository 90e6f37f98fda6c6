package lockRepo

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned when another booking already holds the key.
var ErrLocked = errors.New("technician is being booked by another session")

// SlotLocker hands out short-lived exclusive holds keyed by technician.
type SlotLocker interface {
	// Acquire returns a release func on success, ErrLocked if the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// TechnicianKey covers every booking of one technician, so overlapping
// intervals with different start times contend for the same hold.
func TechnicianKey(technicianID string) string {
	return "technician:" + technicianID
}

const retryInterval = 25 * time.Millisecond

// AcquireWait retries Acquire while the key is held, for up to wait.
// It returns ErrLocked when the hold is still taken after that.
func AcquireWait(ctx context.Context, l SlotLocker, key string, ttl, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		release, err := l.Acquire(ctx, key, ttl)
		if !errors.Is(err, ErrLocked) || !time.Now().Before(deadline) {
			return release, err
		}
		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
