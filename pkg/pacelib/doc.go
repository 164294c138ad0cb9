// Package pacelib implements frame pacing via strategic buffer release.
//
// A rendered frame is not shown the moment it finishes; its buffer is held
// by an FPSLimiter and released just in time to meet the latch deadline of
// an upcoming refresh, keeping the displayed frame rate under a target
// ceiling without missing refresh deadlines:
//
//	                                      redzone
//	                            delta        |
//	                    <------------------><-->
//	--------------------------------------------------------------
//	                    |                   |  |          |
//	--------------------------------------------------------------
//	                    ^                   ^  ^          ^
//	                 release              done |        vblank
//	                                         latch
//
// The package provides the limiter itself, the reference-counted FrameBuffer
// handle it holds, a refresh-interval based VBlankTimer oracle, and a
// BufferPool modelling the swapchain's bounded buffer set. The single-shot
// deadline timer that drives the limiter lives in internal/eventloop; the
// limiter only sees it through the DeadlineTimer interface.
package pacelib
