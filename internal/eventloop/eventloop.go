// Package eventloop provides the polling loop and single-shot absolute
// deadline timers that drive frame pacing. On Linux the loop is epoll over
// timerfds armed with TFD_TIMER_ABSTIME on CLOCK_MONOTONIC; elsewhere a
// goroutine-per-timer fallback keeps the same contract. Timer callbacks run
// on a loop-managed goroutine, never on the arming goroutine.
package eventloop

import (
	"context"
	"errors"

	"github.com/framepace/framepace/pkg/logger"
)

// ErrClosed is returned when operating on a closed loop.
var ErrClosed = errors.New("event loop is closed")

// Waitable receives fired-deadline callbacks.
type Waitable interface {
	// OnPollIn is invoked once per wakeup, at or after the armed
	// deadline, on a loop-managed goroutine.
	OnPollIn()
}

// Timer is a single-shot absolute-deadline wakeup. Arming replaces any
// previously armed deadline. Timer satisfies pacelib.DeadlineTimer.
type Timer interface {
	Arm(deadlineNanos uint64)
	Disarm()
	Close() error
}

// Loop owns a set of timers and dispatches their wakeups.
type Loop interface {
	// AddTimer registers a waitable and returns its timer, initially
	// disarmed.
	AddTimer(w Waitable) (Timer, error)
	// Run dispatches wakeups until ctx is cancelled or the loop is
	// closed.
	Run(ctx context.Context) error
	// Close releases all timers and stops Run.
	Close() error
}

// New creates the platform event loop. A nil logger discards diagnostics.
func New(l logger.Logger) (Loop, error) {
	if l == nil {
		l = logger.Nop()
	}
	return newPlatformLoop(l)
}
