package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLockReturnsSameMutexForKey(t *testing.T) {
	lm := NewLockManager()
	assert.Same(t, lm.GetLock("wallet/alice/coins"), lm.GetLock("wallet/alice/coins"))
	assert.NotSame(t, lm.GetLock("wallet/alice/coins"), lm.GetLock("wallet/bob/coins"))
}

func TestGetLockSerializesCriticalSections(t *testing.T) {
	lm := NewLockManager()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := lm.GetLock("counter")
			lock.Lock()
			counter++
			lock.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}
