//go:build !linux

package pacelib

import "time"

// startTime anchors the monotonic timeline at process start.
var startTime = time.Now()

// NanoTime returns monotonic nanoseconds since process start. time.Since
// uses the runtime's monotonic reading, so the value never jumps with
// wall-clock adjustments.
func NanoTime() uint64 {
	return uint64(time.Since(startTime))
}
