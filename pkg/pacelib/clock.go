package pacelib

// Clock provides monotonic time in nanoseconds. The limiter and the vblank
// oracle take a Clock so tests can drive the pacing arithmetic with fixed
// timestamps.
type Clock interface {
	Nanotime() uint64
}

// SystemClock reads the platform monotonic clock. On Linux this is
// CLOCK_MONOTONIC, the same base the timerfd deadline timer uses.
type SystemClock struct{}

// Nanotime returns the current monotonic time in nanoseconds.
func (SystemClock) Nanotime() uint64 {
	return NanoTime()
}

var _ Clock = SystemClock{}
