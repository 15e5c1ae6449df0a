package orchestrator

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyLock(t *testing.T) {
	locks := newKeyLock()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("acme")
			defer unlock()
			current := atomic.AddInt32(&active, 1)
			for {
				observed := atomic.LoadInt32(&maxActive)
				if current <= observed || atomic.CompareAndSwapInt32(&maxActive, observed, current) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), maxActive)
	require.Empty(t, locks.locks)

	t.Run("Different keys do not block", func(t *testing.T) {
		unlockA := locks.Lock("a")
		unlockB := locks.Lock("b")
		require.Len(t, locks.locks, 2)
		unlockA()
		unlockB()
		require.Empty(t, locks.locks)
	})
}
