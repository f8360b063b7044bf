// Package leaktest verifies that pipeline components shut down without
// leaving goroutines behind.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const settleDelay = 50 * time.Millisecond

// Checker snapshots the goroutine count so a later Check can flag growth.
type Checker struct {
	before int
	t      testing.TB
}

// NewChecker records the current goroutine count after letting in-flight
// goroutines settle.
func NewChecker(t testing.TB) *Checker {
	t.Helper()
	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)
	return &Checker{before: runtime.NumGoroutine(), t: t}
}

// Check fails the test when more than tolerance goroutines outlive the
// snapshot. Shutdown is asynchronous, so the count is re-read a few times
// before reporting.
func (c *Checker) Check(tolerance int) {
	c.t.Helper()

	var after int
	for attempt := 0; attempt < 3; attempt++ {
		runtime.Gosched()
		time.Sleep(settleDelay)
		after = runtime.NumGoroutine()
		if after-c.before <= tolerance {
			return
		}
	}
	c.t.Errorf("goroutine count grew from %d to %d (tolerance %d)", c.before, after, tolerance)
}

// Run executes fn and fails the test when it leaves any goroutine behind.
func Run(t *testing.T, fn func()) {
	t.Helper()
	checker := NewChecker(t)
	fn()
	checker.Check(0)
}
