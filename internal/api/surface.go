package api

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/framepace/framepace/internal/config"
	"github.com/framepace/framepace/internal/eventloop"
	"github.com/framepace/framepace/internal/tracedb"
	"github.com/framepace/framepace/pkg/pacelib"
)

// acquireRetryDelay is how long the frame source backs off when the
// swapchain is exhausted, i.e. the limiter is holding every buffer.
const acquireRetryDelay = time.Millisecond

// Surface ties one limiter to its buffer pool, deadline timer and
// synthetic frame source.
type Surface struct {
	name    string
	limiter *pacelib.FPSLimiter
	pool    *pacelib.BufferPool
	timer   eventloop.Timer

	frameTime uint64
	jitter    uint64

	// prevFallbacks detects fallback engagements between releases for
	// the trace's per-frame fallback flag.
	prevFallbacks atomic.Uint64
}

func newSurface(a *Api, cfg config.SurfaceConfig) (*Surface, error) {
	lim := pacelib.NewFPSLimiter(a.vblank, nil, a.log)
	timer, err := a.loop.AddTimer(lim)
	if err != nil {
		return nil, err
	}
	lim.AttachTimer(timer)

	pool := pacelib.NewBufferPool(cfg.Buffers)
	pool.AttachFeedback(lim.SetTotalBuffers)

	s := &Surface{
		name:      cfg.Name,
		limiter:   lim,
		pool:      pool,
		timer:     timer,
		frameTime: cfg.FrameTimeNanos,
		jitter:    cfg.JitterNanos,
	}
	if a.trace != nil {
		lim.SetReleaseHook(func(buf *pacelib.FrameBuffer) {
			a.offerSample(s.sampleFor(buf))
		})
	}
	return s, nil
}

// sampleFor builds the trace sample for a just-released buffer.
func (s *Surface) sampleFor(buf *pacelib.FrameBuffer) tracedb.Sample {
	ts := buf.Timestamps()
	sched := s.limiter.Schedule()
	fallbacks := s.limiter.Stats().WakeupFallbacks
	prev := s.prevFallbacks.Swap(fallbacks)
	return tracedb.Sample{
		Surface:         s.name,
		SubmitTime:      ts.SubmitTime,
		CompleteTime:    ts.CompleteTime,
		ReleaseTime:     ts.ReleaseTime,
		TargetLatch:     sched.TargetLatch,
		ScheduledWakeup: sched.ScheduledWakeup,
		Fallback:        fallbacks > prev,
	}
}

// runSource is the synthetic frame producer: acquire a buffer, spend the
// configured render time, then submit the frame through the limiter. Real
// deployments replace this with WSI commits; the pacing path is identical.
func (s *Surface) runSource(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		buf, ok := s.pool.Acquire()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(acquireRetryDelay):
			}
			continue
		}

		submit := pacelib.NanoTime()
		render := s.frameTime
		if s.jitter > 0 {
			render += rand.Uint64N(s.jitter)
		}
		select {
		case <-ctx.Done():
			buf.Unref()
			return
		case <-time.After(time.Duration(render)):
		}
		complete := pacelib.NanoTime()

		s.limiter.MarkFrame(buf, submit, complete, true)
	}
}
