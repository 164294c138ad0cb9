package pacelib

import "sync/atomic"

// Stats tracks pacing diagnostics. All counters are monotonic for the
// lifetime of the limiter and safe to read concurrently.
type Stats struct {
	framesMarked    atomic.Uint64
	framesReleased  atomic.Uint64
	framesFlushed   atomic.Uint64
	wakeupFallbacks atomic.Uint64
	overAcquires    atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters, shaped for the
// daemon's status RPC.
type StatsSnapshot struct {
	// FramesMarked counts frames submitted through MarkFrame.
	FramesMarked uint64 `json:"framesMarked"`
	// FramesReleased counts buffers released by the timer path.
	FramesReleased uint64 `json:"framesReleased"`
	// FramesFlushed counts buffers dropped en masse on swapchain
	// reconfiguration.
	FramesFlushed uint64 `json:"framesFlushed"`
	// WakeupFallbacks counts clamp-to-now engagements of the wakeup
	// computation. A steadily growing value indicates a systemic timing
	// model violation.
	WakeupFallbacks uint64 `json:"wakeupFallbacks"`
	// OverAcquires counts holds that pushed the acquired count past the
	// reported swapchain depth.
	OverAcquires uint64 `json:"overAcquires"`
}

// Snapshot returns a consistent-enough copy of the counters. Counters are
// read individually; exact cross-counter consistency is not needed for
// diagnostics.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FramesMarked:    s.framesMarked.Load(),
		FramesReleased:  s.framesReleased.Load(),
		FramesFlushed:   s.framesFlushed.Load(),
		WakeupFallbacks: s.wakeupFallbacks.Load(),
		OverAcquires:    s.overAcquires.Load(),
	}
}
