package pacelib

import (
	"sync"
	"sync/atomic"

	"github.com/framepace/framepace/pkg/logger"
)

// wakeupSlack is added to "now" when validating a computed wakeup point,
// so scheduling quantum bubbles around the current instant don't trip the
// fallback.
const wakeupSlack uint64 = 500_000

// FPSLimiter paces frame presentation by holding rendered buffers and
// releasing them just in time for the next latch deadline.
//
// Two short-lived mutexes protect disjoint state: queueMu guards the hold
// queue and the acquired/total counts, scheduleMu guards the armed flag,
// the cached schedule and the latency inputs, and is held across the whole
// read-compute-arm sequence so a submission-triggered rearm and a
// timer-triggered rearm can never interleave into an inconsistent schedule.
// Neither lock is ever held across a blocking wait; the only wait in the
// system is the deadline timer itself, driven by the owning event loop.
type FPSLimiter struct {
	oracle RefreshOracle
	clock  Clock
	log    logger.Logger
	stats  Stats

	scheduleMu sync.Mutex
	armedCond  *sync.Cond // broadcasts ARMED transitions, on scheduleMu
	armed      atomic.Bool
	timer      DeadlineTimer
	schedule   ScheduleTime
	// Latency inputs for the next schedule computation, taken from the
	// most recently marked buffer: the hardware completion time and the
	// release time of that buffer's previous cycle.
	lastComplete uint64
	lastRelease  uint64
	// Observed submission cadence, EWMA over MarkFrame intervals.
	lastMark     uint64
	ewmaInterval uint64

	queueMu     sync.Mutex
	held        []*FrameBuffer
	acquired    uint32
	total       uint32
	releaseHook func(*FrameBuffer)
}

// NewFPSLimiter creates a limiter driven by the given refresh oracle.
// The deadline timer is attached separately once the owning event loop has
// created it. A nil clock selects the system monotonic clock; a nil logger
// discards diagnostics.
func NewFPSLimiter(oracle RefreshOracle, clock Clock, l logger.Logger) *FPSLimiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if l == nil {
		l = logger.Nop()
	}
	lim := &FPSLimiter{
		oracle: oracle,
		clock:  clock,
		log:    l,
		total:  1,
	}
	lim.armedCond = sync.NewCond(&lim.scheduleMu)
	return lim
}

// AttachTimer wires the deadline timer that will fire OnPollIn. Must be
// called before the first MarkFrame.
func (l *FPSLimiter) AttachTimer(t DeadlineTimer) {
	l.scheduleMu.Lock()
	defer l.scheduleMu.Unlock()
	l.timer = t
}

// MarkFrame records a newly submitted frame and takes ownership of the
// caller's buffer reference. Under the buffer's own lock the previous
// release time is read (feeding the next schedule computation) and the
// record is overwritten with the new submit/complete times. The buffer then
// enters the hold queue, and if rearm is set the timer is unconditionally
// recomputed and re-armed: new timing information invalidates any cached
// schedule.
func (l *FPSLimiter) MarkFrame(buf *FrameBuffer, submitNanos, completeNanos uint64, rearm bool) {
	prevRelease := buf.beginCycle(submitNanos, completeNanos)

	l.scheduleMu.Lock()
	l.lastComplete = completeNanos
	if prevRelease != 0 {
		l.lastRelease = prevRelease
	}
	if l.lastMark != 0 && submitNanos > l.lastMark {
		sample := submitNanos - l.lastMark
		if l.ewmaInterval == 0 {
			l.ewmaInterval = sample
		} else {
			// alpha = 1/8
			l.ewmaInterval += (sample - l.ewmaInterval) / 8
		}
	}
	l.lastMark = submitNanos
	l.scheduleMu.Unlock()

	l.stats.framesMarked.Add(1)
	l.HoldBuffer(buf)

	if rearm {
		// Force timer re-arm with the new timings.
		l.ArmNextFrame(false)
	}
}

// CalcNextWakeupTime computes the next pacing target without committing it.
// The refresh oracle is always peeked, so repeated calls with unchanged
// oracle state return identical results. The peek flag only controls
// whether the clamp fallback is reported as a diagnostic.
func (l *FPSLimiter) CalcNextWakeupTime(peek bool) ScheduleTime {
	l.scheduleMu.Lock()
	defer l.scheduleMu.Unlock()
	return l.calcNextWakeupLocked(peek)
}

// calcNextWakeupLocked requires scheduleMu.
func (l *FPSLimiter) calcNextWakeupLocked(peek bool) ScheduleTime {
	next := l.oracle.CalcNextWakeupTime(true)

	// The observed time between the last buffer finishing rendering and
	// actually being released in its previous cycle.
	var window uint64
	if l.lastComplete > l.lastRelease {
		window = l.lastComplete - l.lastRelease
	}
	wakeup := uint64(0)
	if next.TargetLatch > window {
		wakeup = next.TargetLatch - window
	}

	now := l.clock.Nanotime()
	switch {
	case wakeup > now+wakeupSlack:
		// A release point this far past "now" should never happen under
		// a sane timing model; clamp to now so the hold queue cannot
		// starve and flag it instead of letting the schedule drift.
		if !peek {
			l.stats.wakeupFallbacks.Add(1)
			l.log.Warning("wakeup %d implausibly far after now %d, clamping", wakeup, now)
		}
		wakeup = now
	case wakeup < now:
		// The release is already due. Wake immediately rather than
		// registering a deadline in the past.
		wakeup = now
	}

	return ScheduleTime{
		TargetRefresh:   next.TargetRefresh,
		TargetLatch:     next.TargetLatch,
		ScheduledWakeup: wakeup,
	}
}

// ArmNextFrame computes and commits the next wakeup. A preemptive arm is a
// no-op when already armed, so multiple call sites racing to schedule the
// same next wakeup don't re-register the timer redundantly.
func (l *FPSLimiter) ArmNextFrame(preemptive bool) {
	l.scheduleMu.Lock()
	defer l.scheduleMu.Unlock()

	if preemptive && l.armed.Load() {
		return
	}

	l.armed.Store(true)
	l.armedCond.Broadcast()

	l.schedule = l.calcNextWakeupLocked(false)
	if l.timer != nil {
		l.timer.Arm(l.schedule.ScheduledWakeup)
	}
}

// OnPollIn is the timer-fired callback, invoked by the owning event loop.
// The armed flag is atomically tested and cleared; a stale or duplicate
// wakeup finds it already clear and is ignored. Otherwise exactly one
// buffer is released and the next wakeup is armed preemptively, forming the
// steady-state pacing cycle.
func (l *FPSLimiter) OnPollIn() {
	if !l.armed.CompareAndSwap(true, false) {
		return
	}

	l.ReleaseOldestBuffer()
	l.ArmNextFrame(true)
}

// HoldBuffer appends the buffer to the tail of the hold queue. Holding more
// buffers than the swapchain reports is tracked as a soft diagnostic, never
// blocked: the pool owner may legitimately be reconfiguring underneath us.
func (l *FPSLimiter) HoldBuffer(buf *FrameBuffer) {
	l.queueMu.Lock()
	l.held = append(l.held, buf)
	l.acquired++
	acquired, total := l.acquired, l.total
	l.queueMu.Unlock()

	if acquired > total {
		l.stats.overAcquires.Add(1)
		l.log.Warning("holding %d buffers, swapchain reports %d", acquired, total)
	}
}

// ReleaseOldestBuffer pops the front of the hold queue, stamping the
// buffer's release time before relinquishing the limiter's reference.
// Returns the pre-decrement acquired count, 0 if the queue was empty.
func (l *FPSLimiter) ReleaseOldestBuffer() uint32 {
	l.queueMu.Lock()
	if len(l.held) == 0 {
		l.queueMu.Unlock()
		return 0
	}
	buf := l.held[0]
	buf.stampRelease(l.clock.Nanotime())

	copy(l.held, l.held[1:])
	l.held[len(l.held)-1] = nil
	l.held = l.held[:len(l.held)-1]

	old := l.acquired
	l.acquired--
	hook := l.releaseHook
	l.queueMu.Unlock()

	l.stats.framesReleased.Add(1)
	if hook != nil {
		// Observe the buffer before the reference drops; the pool may
		// recycle it immediately after.
		hook(buf)
	}
	buf.Unref()
	return old
}

// ReleaseAllBuffers drops every held buffer without stamping release times;
// the buffers are being discarded, not presented. Returns the prior
// acquired count.
func (l *FPSLimiter) ReleaseAllBuffers() uint32 {
	l.queueMu.Lock()
	held := l.held
	l.held = nil
	old := l.acquired
	l.acquired = 0
	l.queueMu.Unlock()

	for _, buf := range held {
		buf.Unref()
	}
	if old > 0 {
		l.stats.framesFlushed.Add(uint64(old))
	}
	return old
}

// SetReleaseHook registers an observer invoked with each buffer released
// by the timer path, after its release time is stamped and before the
// limiter's reference drops. Diagnostics only; the hook must not call back
// into the limiter.
func (l *FPSLimiter) SetReleaseHook(hook func(*FrameBuffer)) {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	l.releaseHook = hook
}

// SetTotalBuffers records new swapchain feedback. A new buffer count means
// new buffer identities, so all pacing state tied to the old buffers is
// discarded unconditionally.
func (l *FPSLimiter) SetTotalBuffers(total uint32) {
	l.queueMu.Lock()
	l.total = total
	l.queueMu.Unlock()

	l.ReleaseAllBuffers()
}

// Close disarms the timer and releases all held buffers so no buffer
// ownership leaks on shutdown.
func (l *FPSLimiter) Close() {
	l.scheduleMu.Lock()
	l.armed.Store(false)
	if l.timer != nil {
		l.timer.Disarm()
	}
	l.scheduleMu.Unlock()

	l.ReleaseAllBuffers()
}

// Armed reports whether a wakeup is currently scheduled.
func (l *FPSLimiter) Armed() bool {
	return l.armed.Load()
}

// WaitArmed blocks until the limiter transitions to ARMED.
func (l *FPSLimiter) WaitArmed() {
	l.scheduleMu.Lock()
	for !l.armed.Load() {
		l.armedCond.Wait()
	}
	l.scheduleMu.Unlock()
}

// Schedule returns the most recently committed wakeup schedule.
func (l *FPSLimiter) Schedule() ScheduleTime {
	l.scheduleMu.Lock()
	defer l.scheduleMu.Unlock()
	return l.schedule
}

// Counts returns the acquired count and the reported swapchain depth.
// The acquired count always equals the hold queue length.
func (l *FPSLimiter) Counts() (acquired, total uint32) {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	return l.acquired, l.total
}

// HeldCount returns the hold queue length.
func (l *FPSLimiter) HeldCount() int {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	return len(l.held)
}

// ObservedFrameInterval returns the EWMA of MarkFrame submission intervals
// in nanoseconds, 0 before two frames have been marked.
func (l *FPSLimiter) ObservedFrameInterval() uint64 {
	l.scheduleMu.Lock()
	defer l.scheduleMu.Unlock()
	return l.ewmaInterval
}

// Stats returns a snapshot of the diagnostics counters.
func (l *FPSLimiter) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}
