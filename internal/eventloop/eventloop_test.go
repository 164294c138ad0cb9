package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/framepace/framepace/pkg/pacelib"
)

// fireOnce signals a channel on the first wakeup.
type fireOnce struct {
	ch chan struct{}
}

func newFireOnce() *fireOnce {
	return &fireOnce{ch: make(chan struct{}, 8)}
}

func (f *fireOnce) OnPollIn() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func startLoop(t *testing.T) (Loop, context.CancelFunc) {
	t.Helper()
	lp, err := New(nil)
	if err != nil {
		t.Fatalf("failed to create loop: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = lp.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = lp.Close()
	})
	return lp, cancel
}

// TestTimer_FiresAtDeadline verifies an armed timer fires once, at or after
// its absolute deadline.
func TestTimer_FiresAtDeadline(t *testing.T) {
	lp, _ := startLoop(t)

	w := newFireOnce()
	tm, err := lp.AddTimer(w)
	if err != nil {
		t.Fatalf("failed to add timer: %v", err)
	}
	defer tm.Close()

	deadline := pacelib.NanoTime() + uint64(30*time.Millisecond)
	tm.Arm(deadline)

	select {
	case <-w.ch:
		if now := pacelib.NanoTime(); now < deadline {
			t.Fatalf("timer fired %dns early", deadline-now)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never fired")
	}
}

// TestTimer_PastDeadlineFiresImmediately verifies an already-expired
// absolute deadline still produces a wakeup.
func TestTimer_PastDeadlineFiresImmediately(t *testing.T) {
	lp, _ := startLoop(t)

	w := newFireOnce()
	tm, err := lp.AddTimer(w)
	if err != nil {
		t.Fatalf("failed to add timer: %v", err)
	}
	defer tm.Close()

	tm.Arm(pacelib.NanoTime())

	select {
	case <-w.ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("past-deadline timer never fired")
	}
}

// TestTimer_RearmReplacesDeadline verifies re-arming moves the wakeup to
// the new deadline.
func TestTimer_RearmReplacesDeadline(t *testing.T) {
	lp, _ := startLoop(t)

	w := newFireOnce()
	tm, err := lp.AddTimer(w)
	if err != nil {
		t.Fatalf("failed to add timer: %v", err)
	}
	defer tm.Close()

	tm.Arm(pacelib.NanoTime() + uint64(10*time.Second))
	tm.Arm(pacelib.NanoTime() + uint64(20*time.Millisecond))

	select {
	case <-w.ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("re-armed timer never fired")
	}
}

// TestTimer_DisarmCancels verifies a disarmed timer produces no wakeup.
func TestTimer_DisarmCancels(t *testing.T) {
	lp, _ := startLoop(t)

	w := newFireOnce()
	tm, err := lp.AddTimer(w)
	if err != nil {
		t.Fatalf("failed to add timer: %v", err)
	}
	defer tm.Close()

	tm.Arm(pacelib.NanoTime() + uint64(60*time.Millisecond))
	tm.Disarm()

	select {
	case <-w.ch:
		t.Fatalf("disarmed timer fired")
	case <-time.After(200 * time.Millisecond):
	}
}

// TestLoop_AddTimerAfterClose verifies a closed loop rejects new timers.
func TestLoop_AddTimerAfterClose(t *testing.T) {
	lp, err := New(nil)
	if err != nil {
		t.Fatalf("failed to create loop: %v", err)
	}
	if err := lp.Close(); err != nil {
		t.Fatalf("failed to close loop: %v", err)
	}
	if _, err := lp.AddTimer(newFireOnce()); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
