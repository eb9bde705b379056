package testutil

import (
	"runtime"
	"testing"
	"time"
)

const (
	leakWaitMax  = 10 * time.Second
	leakPollStep = 200 * time.Millisecond
)

// AssertNoGoroutineLeaks polls until the goroutine count drops back to
// baseline (plus margin) or the wait budget runs out. Pumps and timers
// need a moment to unwind after a close, so a single sample would flake.
func AssertNoGoroutineLeaks(t *testing.T, baseline, margin int) {
	t.Helper()
	limit := baseline + margin
	for deadline := time.Now().Add(leakWaitMax); time.Now().Before(deadline); {
		if runtime.NumGoroutine() <= limit {
			return
		}
		time.Sleep(leakPollStep)
	}
	t.Errorf("goroutines did not return to baseline: have %d, want <= %d", runtime.NumGoroutine(), limit)
}
