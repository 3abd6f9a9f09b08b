package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockSerializesSameScanID(t *testing.T) {
	locks := NewScanLocks()

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locks.WithLock("scan-1", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive, "operations on the same scanId must never overlap")
}

func TestWithLockAllowsDifferentScanIDsConcurrently(t *testing.T) {
	locks := NewScanLocks()

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var wg sync.WaitGroup

	for _, id := range []string{"scan-a", "scan-b"} {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locks.WithLock(id, func() error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}

	// Both should be able to start without waiting on each other.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first scanId never started")
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("second scanId never started concurrently with the first")
	}
	close(release)
	wg.Wait()
}

func TestWithLockPropagatesError(t *testing.T) {
	locks := NewScanLocks()
	boom := assert.AnError
	err := locks.WithLock("scan-x", func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
