// Package api implements the daemon's control surface: a registry of paced
// surfaces and the JSON-RPC method handlers operating on it.
package api

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/internal/config"
	"github.com/framepace/framepace/internal/eventloop"
	"github.com/framepace/framepace/internal/tracedb"
	"github.com/framepace/framepace/pkg/logger"
	"github.com/framepace/framepace/pkg/pacelib"
)

// Custom JSON-RPC error codes for pacing operations.
const (
	codeUnknownSurface = jrpc2.Code(-32001)
	codeTraceDisabled  = jrpc2.Code(-32002)
	codeInvalidParams  = jrpc2.Code(-32602)
)

// traceQueueDepth bounds the async trace recorder; samples beyond it are
// dropped rather than stalling the release path.
const traceQueueDepth = 256

// Api owns the per-surface limiter registry and serves the control
// methods.
type Api struct {
	log    logger.Logger
	vblank *pacelib.VBlankTimer
	loop   eventloop.Loop
	trace  *tracedb.TraceDB // nil when tracing is disabled

	mu        sync.Mutex
	refreshHz float64

	surfaces pacelib.VMap[string, *Surface]

	samples chan tracedb.Sample
	wg      sync.WaitGroup
}

// New creates the Api. trace may be nil to disable frame tracing.
func New(l logger.Logger, vblank *pacelib.VBlankTimer, loop eventloop.Loop, trace *tracedb.TraceDB, refreshHz float64) *Api {
	if l == nil {
		l = logger.Nop()
	}
	return &Api{
		log:       l,
		vblank:    vblank,
		loop:      loop,
		trace:     trace,
		refreshHz: refreshHz,
		surfaces:  pacelib.NewVMap[string, *Surface](),
		samples:   make(chan tracedb.Sample, traceQueueDepth),
	}
}

// AddSurface registers a paced surface with its own limiter, buffer pool,
// deadline timer and synthetic frame source.
func (a *Api) AddSurface(cfg config.SurfaceConfig) error {
	s, err := newSurface(a, cfg)
	if err != nil {
		return err
	}
	a.surfaces.Set(cfg.Name, s)
	a.log.Info("surface %q: %d buffers, %.1fms frame time",
		cfg.Name, cfg.Buffers, float64(cfg.FrameTimeNanos)/1e6)
	return nil
}

// Start launches the frame sources and the trace recorder. They stop when
// ctx is cancelled.
func (a *Api) Start(ctx context.Context) {
	if a.trace != nil {
		a.wg.Add(1)
		pacelib.SafeGo(a.log, &a.wg, "trace-recorder", nil, func() {
			a.recordSamples(ctx)
		})
	}
	a.surfaces.Range(func(_ string, s *Surface) bool {
		a.wg.Add(1)
		pacelib.SafeGo(a.log, &a.wg, "frame-source-"+s.name, nil, func() {
			s.runSource(ctx)
		})
		return true
	})
}

// Close disarms all limiters and releases their held buffers, then waits
// for the source goroutines to exit. The caller must have cancelled the
// Start context first.
func (a *Api) Close() {
	a.surfaces.Range(func(_ string, s *Surface) bool {
		s.limiter.Close()
		_ = s.timer.Close()
		return true
	})
	a.wg.Wait()
}

// Methods returns the jrpc2 assigner for the control endpoint.
func (a *Api) Methods() handler.Map {
	return handler.Map{
		common.MethodStatus:     handler.New(a.Status),
		common.MethodSetRefresh: handler.New(a.SetRefresh),
		common.MethodSetBuffers: handler.New(a.SetBuffers),
		common.MethodFlush:      handler.New(a.Flush),
		common.MethodTrace:      handler.New(a.Trace),
		common.MethodVersion:    handler.New(a.Version),
	}
}

// recordSamples drains the trace queue into the store.
func (a *Api) recordSamples(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-a.samples:
			if err := a.trace.Record(s); err != nil {
				a.log.Error("trace record: %v", err)
			}
		}
	}
}

// offerSample enqueues a sample for recording, dropping it when the
// recorder is behind.
func (a *Api) offerSample(s tracedb.Sample) {
	select {
	case a.samples <- s:
	default:
	}
}
