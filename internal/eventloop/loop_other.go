//go:build !linux

package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/framepace/framepace/pkg/logger"
	"github.com/framepace/framepace/pkg/pacelib"
)

// chanLoop is the portable fallback: one goroutine per timer, woken by a
// reset time.Timer. Deadlines are absolute pacelib.NanoTime values and are
// converted to relative sleeps at arm time.
type chanLoop struct {
	log logger.Logger

	mu     sync.Mutex
	timers []*chanTimer
	closed bool
	done   chan struct{}
}

func newPlatformLoop(l logger.Logger) (Loop, error) {
	return &chanLoop{log: l, done: make(chan struct{})}, nil
}

func (lp *chanLoop) AddTimer(w Waitable) (Timer, error) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.closed {
		return nil, ErrClosed
	}
	t := &chanTimer{
		w:        w,
		armCh:    make(chan uint64, 1),
		disarmCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	lp.timers = append(lp.timers, t)
	go t.run()
	return t, nil
}

func (lp *chanLoop) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-lp.done:
		return nil
	}
}

func (lp *chanLoop) Close() error {
	lp.mu.Lock()
	if lp.closed {
		lp.mu.Unlock()
		return nil
	}
	lp.closed = true
	timers := lp.timers
	lp.timers = nil
	lp.mu.Unlock()

	for _, t := range timers {
		_ = t.Close()
	}
	close(lp.done)
	return nil
}

type chanTimer struct {
	w        Waitable
	armCh    chan uint64
	disarmCh chan struct{}

	closeOnce sync.Once
	done      chan struct{}
}

func (t *chanTimer) run() {
	var tm *time.Timer
	var fire <-chan time.Time
	defer func() {
		if tm != nil {
			tm.Stop()
		}
	}()

	for {
		select {
		case deadline := <-t.armCh:
			dur := time.Duration(0)
			if now := pacelib.NanoTime(); deadline > now {
				dur = time.Duration(deadline - now)
			}
			if tm == nil {
				tm = time.NewTimer(dur)
			} else {
				tm.Stop()
				tm.Reset(dur)
			}
			fire = tm.C

		case <-t.disarmCh:
			if tm != nil {
				tm.Stop()
			}
			fire = nil

		case <-fire:
			fire = nil
			t.w.OnPollIn()

		case <-t.done:
			return
		}
	}
}

// Arm replaces any pending deadline with the new one.
func (t *chanTimer) Arm(deadlineNanos uint64) {
	select {
	case <-t.done:
		return
	default:
	}
	// Collapse a not-yet-consumed arm request.
	select {
	case <-t.armCh:
	default:
	}
	select {
	case t.armCh <- deadlineNanos:
	case <-t.done:
	}
}

// Disarm cancels any pending deadline.
func (t *chanTimer) Disarm() {
	select {
	case t.disarmCh <- struct{}{}:
	case <-t.done:
	default:
	}
}

func (t *chanTimer) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
