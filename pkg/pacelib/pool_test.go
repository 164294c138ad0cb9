package pacelib

import "testing"

// TestBufferPool_AcquireExhaust verifies the pool hands out exactly depth
// buffers before reporting exhaustion.
func TestBufferPool_AcquireExhaust(t *testing.T) {
	p := NewBufferPool(2)

	a, ok := p.Acquire()
	if !ok || a == nil {
		t.Fatalf("first acquire failed")
	}
	b, ok := p.Acquire()
	if !ok || b == nil {
		t.Fatalf("second acquire failed")
	}
	if _, ok := p.Acquire(); ok {
		t.Fatalf("expected exhaustion at depth 2")
	}

	a.Unref()
	if p.FreeCount() != 1 {
		t.Fatalf("expected buffer returned on last unref, free=%d", p.FreeCount())
	}
	if _, ok := p.Acquire(); !ok {
		t.Fatalf("expected acquire to succeed after return")
	}
	_ = b
}

// TestBufferPool_ResizeNotifiesFeedback verifies resizing pushes swapchain
// feedback and flushes the attached limiter.
func TestBufferPool_ResizeNotifiesFeedback(t *testing.T) {
	p := NewBufferPool(2)

	oracle := &fakeOracle{st: ScheduleTime{TargetLatch: 16_666_666}}
	lim := NewFPSLimiter(oracle, &fakeClock{now: 1_000}, nil)
	lim.AttachTimer(&fakeTimer{})
	p.AttachFeedback(lim.SetTotalBuffers)

	if _, total := lim.Counts(); total != 2 {
		t.Fatalf("expected feedback to report depth 2 on attach, got %d", total)
	}

	buf, _ := p.Acquire()
	lim.MarkFrame(buf, 1_000, 2_000, false)

	p.Resize(3)

	acquired, total := lim.Counts()
	if acquired != 0 {
		t.Fatalf("expected limiter flushed on resize, acquired=%d", acquired)
	}
	if total != 3 {
		t.Fatalf("expected depth 3 reported, got %d", total)
	}
	if p.FreeCount() != 3 {
		t.Fatalf("expected 3 fresh buffers, free=%d", p.FreeCount())
	}
}

// TestBufferPool_StaleGenerationDiscarded verifies a buffer from before a
// resize is not readmitted to the pool.
func TestBufferPool_StaleGenerationDiscarded(t *testing.T) {
	p := NewBufferPool(1)

	buf, _ := p.Acquire()
	p.Resize(1)

	buf.Unref()

	if p.FreeCount() != 1 {
		t.Fatalf("stale buffer readmitted, free=%d", p.FreeCount())
	}
}
