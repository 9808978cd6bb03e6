package lifecycle

import (
	"math/rand"
	"time"
)

// expBackoff returns 2^attempts seconds capped at max, plus up to 10% of
// jitter so that several pollers do not hit the bus in lock step.
func expBackoff(attempts int, max time.Duration) time.Duration {
	if attempts > 30 {
		attempts = 30
	}
	delay := time.Duration(1<<uint(attempts)) * time.Second
	if delay > max {
		delay = max
	}
	return delay + time.Duration(rand.Int63n(int64(delay)/10+1))
}
