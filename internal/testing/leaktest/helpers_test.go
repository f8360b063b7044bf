package leaktest

import (
	"sync"
	"testing"
	"time"
)

func TestCheckerPassesWhenGoroutinesFinish(t *testing.T) {
	checker := NewChecker(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(2 * time.Millisecond)
		}()
	}
	wg.Wait()

	checker.Check(0)
}

func TestCheckerToleratesBoundedBackground(t *testing.T) {
	checker := NewChecker(t)

	done := make(chan struct{})
	go func() { <-done }()

	checker.Check(1)
	close(done)
}

func TestRun(t *testing.T) {
	Run(t, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
		}()
		wg.Wait()
	})
}
