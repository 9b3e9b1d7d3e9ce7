package fsm

import "time"

// defaultToleranceMS is the toleration window applied to a dependency edge
// that does not configure its own ToleranceMS.
const defaultToleranceMS int64 = 5000

// msDuration converts a millisecond count from configuration into a
// time.Duration, treating a non-positive value as "none" (caller supplies a
// default instead).
func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
