// Package clock provides the time source and delayed callbacks used by the
// order lifecycle, with a serializing event loop and a manual fake for tests.
package clock

import (
	"time"
)

// Clock schedules callbacks after a delay.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// Real is the wall clock. Callbacks run on their own goroutine; wrap it in
// a Loop to serialize them with other handlers.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
