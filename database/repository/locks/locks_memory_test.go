package lockRepo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemorySlotLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	l := NewMemorySlotLocker()
	l.Now = func() time.Time { return now }
	key := TechnicianKey("T1")

	if key != "technician:T1" {
		t.Fatalf("TechnicianKey = %q", key)
	}

	release, err := l.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Acquire(ctx, key, time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire err = %v, want ErrLocked", err)
	}
	if r, err := l.Acquire(ctx, TechnicianKey("T2"), time.Minute); err != nil {
		t.Fatalf("other key should be free: %v", err)
	} else {
		r()
	}

	release()
	again, err := l.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}

	// Expired holds are taken over, and the stale release leaves the new owner alone.
	now = now.Add(2 * time.Minute)
	takeover, err := l.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("Acquire after expiry: %v", err)
	}
	again()
	if _, err := l.Acquire(ctx, key, time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("stale release freed the new hold: %v", err)
	}
	takeover()
}

func TestMemorySlotLockerExclusive(t *testing.T) {
	l := NewMemorySlotLocker()
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(context.Background(), TechnicianKey("T1"), time.Minute); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("%d goroutines acquired the same slot, want 1", wins)
	}
}

func TestAcquireWait(t *testing.T) {
	ctx := context.Background()
	l := NewMemorySlotLocker()
	key := TechnicianKey("T5")

	held, err := l.Acquire(ctx, key, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AcquireWait(ctx, l, key, time.Minute, 60*time.Millisecond); !errors.Is(err, ErrLocked) {
		t.Fatalf("AcquireWait on a held key err = %v, want ErrLocked", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		held()
	}()
	release, err := AcquireWait(ctx, l, key, time.Minute, 2*time.Second)
	if err != nil {
		t.Fatalf("AcquireWait after release: %v", err)
	}
	release()

	blocker, _ := l.Acquire(ctx, key, time.Minute)
	defer blocker()
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := AcquireWait(cctx, l, key, time.Minute, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("AcquireWait with cancelled context err = %v", err)
	}
}
