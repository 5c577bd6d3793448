// Package globaltime is the process clock. Trace timestamps, health output and
// latency fields all read it, so tests can freeze it in one place.
package globaltime

import (
	"sync/atomic"
	"time"
)

type clockFunc func() time.Time

var current atomic.Pointer[clockFunc]

func init() {
	system := clockFunc(time.Now)
	current.Store(&system)
}

func Now() time.Time {
	return (*current.Load())()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since reports the time elapsed since started on the process clock.
func Since(started time.Time) time.Duration {
	return Now().Sub(started)
}

// Freeze pins the clock to at and returns a func restoring the previous clock.
// Intended for t.Cleanup.
func Freeze(at time.Time) (restore func()) {
	frozen := clockFunc(func() time.Time { return at })
	previous := current.Swap(&frozen)
	return func() {
		current.Store(previous)
	}
}
