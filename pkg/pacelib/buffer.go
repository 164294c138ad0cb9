package pacelib

import (
	"sync"
	"sync/atomic"
)

// BufferTimestamps is the timing record carried by every frame buffer.
// All values are absolute monotonic nanoseconds; zero means "not yet set
// this cycle" (or, for ReleaseTime, "never released").
type BufferTimestamps struct {
	// SubmitTime is when the client submitted the frame.
	SubmitTime uint64
	// CompleteTime is when the hardware reported rendering complete.
	CompleteTime uint64
	// ReleaseTime is when the limiter last released this buffer.
	// It survives cycle resets and is monotonically non-decreasing
	// across a buffer's reuse cycles.
	ReleaseTime uint64
}

// FrameBuffer is a reference-counted handle to a rendered frame buffer.
// The limiter holds a reference while the buffer sits in its hold queue but
// is never the sole owner; release authority belongs to the limiter, the
// storage belongs to whoever created the buffer.
//
// The timestamp record lives behind the buffer's own mutex since submission
// and timed release mutate it from different goroutines.
type FrameBuffer struct {
	id   uint32
	gen  uint32
	refs atomic.Int32

	// onFinal runs when the reference count drops to zero, typically
	// returning the buffer to its pool.
	onFinal func(*FrameBuffer)

	mu sync.Mutex
	ts BufferTimestamps
}

// NewFrameBuffer creates a buffer handle with a reference count of one.
// onFinal may be nil for free-standing buffers (tests, single-use frames).
func NewFrameBuffer(id uint32, onFinal func(*FrameBuffer)) *FrameBuffer {
	b := &FrameBuffer{id: id, onFinal: onFinal}
	b.refs.Store(1)
	return b
}

// ID returns the buffer's identity within its pool generation.
func (b *FrameBuffer) ID() uint32 { return b.id }

// Ref takes an additional reference and returns the buffer for chaining.
func (b *FrameBuffer) Ref() *FrameBuffer {
	b.refs.Add(1)
	return b
}

// Unref drops one reference. When the last reference is dropped the
// buffer's finalizer runs, usually handing it back to the pool.
func (b *FrameBuffer) Unref() {
	if b.refs.Add(-1) == 0 && b.onFinal != nil {
		b.onFinal(b)
	}
}

// Timestamps returns a copy of the buffer's timing record.
func (b *FrameBuffer) Timestamps() BufferTimestamps {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ts
}

// beginCycle overwrites the record with the new submit/complete times while
// carrying the previous release time forward, and returns that previous
// release time so the limiter can derive the last completion-to-release
// latency. Zero means the buffer has never been released.
func (b *FrameBuffer) beginCycle(submitNanos, completeNanos uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.ts.ReleaseTime
	b.ts = BufferTimestamps{
		SubmitTime:   submitNanos,
		CompleteTime: completeNanos,
		ReleaseTime:  prev,
	}
	return prev
}

// stampRelease records the release instant. ReleaseTime never moves
// backwards even if the caller's clock reading is stale.
func (b *FrameBuffer) stampRelease(nowNanos uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if nowNanos > b.ts.ReleaseTime {
		b.ts.ReleaseTime = nowNanos
	}
}
