//go:build linux

package pacelib

import "golang.org/x/sys/unix"

// NanoTime returns CLOCK_MONOTONIC in nanoseconds. Timer deadlines computed
// from this value can be passed directly to an absolute-time timerfd.
func NanoTime() uint64 {
	var ts unix.Timespec
	// clock_gettime on CLOCK_MONOTONIC cannot fail with a valid timespec.
	_ = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	return uint64(ts.Nano())
}
