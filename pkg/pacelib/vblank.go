package pacelib

import "sync"

// Default 60Hz refresh geometry. The redzone is the safety margin held
// before the vblank to absorb compositor and scheduling jitter.
const (
	DefaultRefreshInterval uint64 = 16_666_666
	DefaultRedzone         uint64 = 1_650_000
)

// ScheduleTime describes one pacing target: the vblank being aimed at, the
// latch deadline for that vblank, and the wakeup point chosen to meet it.
// All values are absolute monotonic nanoseconds. Instances are ephemeral
// and recomputed on every arm.
type ScheduleTime struct {
	// TargetRefresh is the predicted vblank time.
	TargetRefresh uint64 `json:"targetRefresh"`
	// TargetLatch is the deadline by which a released buffer must be
	// fully available for TargetRefresh.
	TargetLatch uint64 `json:"targetLatch"`
	// ScheduledWakeup is when the scheduler must fire to meet the latch.
	ScheduledWakeup uint64 `json:"scheduledWakeup"`
}

// RefreshOracle predicts the next refresh deadline. A peek query must be
// side-effect free: the oracle may be asked repeatedly without disturbing
// whatever schedule it maintains for its own consumers.
type RefreshOracle interface {
	CalcNextWakeupTime(peek bool) ScheduleTime
}

// DeadlineTimer is a single-shot absolute-deadline wakeup. Arming replaces
// any previously armed deadline. The timer fires the limiter's OnPollIn on
// an event-loop-managed goroutine, at or after the deadline.
type DeadlineTimer interface {
	Arm(deadlineNanos uint64)
	Disarm()
}

// VBlankTimer predicts vblanks from a fixed refresh interval, phase-locked
// to the instant the interval was configured. It implements RefreshOracle
// for the limiter; committed (non-peek) queries additionally record the
// schedule they returned for the daemon's status surface.
type VBlankTimer struct {
	clock Clock

	mu        sync.Mutex
	base      uint64
	interval  uint64
	redzone   uint64
	committed ScheduleTime
}

// NewVBlankTimer creates an oracle for the given refresh interval and
// redzone, both in nanoseconds. Zero values select the 60Hz defaults.
// A nil clock selects the system monotonic clock.
func NewVBlankTimer(clock Clock, intervalNanos, redzoneNanos uint64) *VBlankTimer {
	if clock == nil {
		clock = SystemClock{}
	}
	v := &VBlankTimer{clock: clock}
	v.SetRefreshInterval(intervalNanos, redzoneNanos)
	return v
}

// SetRefreshInterval reconfigures the refresh geometry and re-phases the
// prediction to the current instant. A redzone at or above the interval is
// clamped to keep latch times inside the frame.
func (v *VBlankTimer) SetRefreshInterval(intervalNanos, redzoneNanos uint64) {
	if intervalNanos == 0 {
		intervalNanos = DefaultRefreshInterval
	}
	if redzoneNanos == 0 {
		redzoneNanos = DefaultRedzone
	}
	if redzoneNanos >= intervalNanos {
		redzoneNanos = intervalNanos / 2
	}
	now := v.clock.Nanotime()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.base = now
	v.interval = intervalNanos
	v.redzone = redzoneNanos
}

// RefreshInterval returns the configured interval and redzone.
func (v *VBlankTimer) RefreshInterval() (intervalNanos, redzoneNanos uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.interval, v.redzone
}

// CalcNextWakeupTime predicts the next vblank strictly after now and the
// latch deadline in front of it. With peek=true nothing is mutated; with
// peek=false the returned schedule is recorded as the last committed one.
func (v *VBlankTimer) CalcNextWakeupTime(peek bool) ScheduleTime {
	now := v.clock.Nanotime()

	v.mu.Lock()
	defer v.mu.Unlock()

	elapsed := uint64(0)
	if now > v.base {
		elapsed = now - v.base
	}
	target := v.base + (elapsed/v.interval+1)*v.interval
	latch := target - v.redzone
	// Inside the redzone already: this vblank cannot be latched, aim at
	// the next one.
	if latch <= now {
		target += v.interval
		latch += v.interval
	}

	st := ScheduleTime{
		TargetRefresh:   target,
		TargetLatch:     latch,
		ScheduledWakeup: latch,
	}
	if !peek {
		v.committed = st
	}
	return st
}

// LastCommitted returns the schedule recorded by the most recent non-peek
// query. Zero value until the first commit.
func (v *VBlankTimer) LastCommitted() ScheduleTime {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.committed
}

var _ RefreshOracle = (*VBlankTimer)(nil)
