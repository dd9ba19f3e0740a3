package clock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs handlers one at a time on a single goroutine. Timer callbacks
// scheduled through the loop are posted to it, so they never overlap with
// other handlers.
type Loop struct {
	base   Clock
	events chan func()
	done   chan struct{}
	once   sync.Once
}

func NewLoop(base Clock, buffer int) *Loop {
	if base == nil {
		base = Real{}
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		base:   base,
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Run processes handlers until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

// Post queues fn. It reports false when the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)

	if !l.Post(func() { result <- fn() }) {
		return ErrLoopStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

func (l *Loop) Now() time.Time {
	return l.base.Now()
}

// AfterFunc schedules fn to be posted to the loop after d. Stopping the
// timer after it has been posted but before it ran still prevents fn.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.inner = l.base.AfterFunc(d, func() {
		l.Post(func() {
			if t.claim() {
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	mu    sync.Mutex
	done  bool
	inner Timer
}

// claim marks the timer as fired; it fails if Stop got there first.
func (t *loopTimer) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.inner.Stop()
	return true
}
