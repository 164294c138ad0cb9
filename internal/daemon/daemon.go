// Package daemon assembles and runs the framepaced service: the event
// loop, the per-surface limiters, the trace store, the maintenance
// scheduler and the control endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/internal/api"
	"github.com/framepace/framepace/internal/config"
	"github.com/framepace/framepace/internal/eventloop"
	"github.com/framepace/framepace/internal/maintenance"
	"github.com/framepace/framepace/internal/server"
	"github.com/framepace/framepace/internal/tracedb"
	"github.com/framepace/framepace/pkg/logger"
	"github.com/framepace/framepace/pkg/pacelib"
)

// Sentinel errors for the daemon lifecycle.
var (
	// ErrAlreadyRunning is returned when Run is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")
)

// Maintenance job names.
const (
	jobPruneTrace = "prune-trace"
	jobSummary    = "pacing-summary"
)

// shutdownGrace bounds how long Shutdown waits for Run to unwind.
const shutdownGrace = 5 * time.Second

// Daemon owns the daemon's component graph for one Run.
type Daemon struct {
	log logger.Logger
	cfg *config.Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped daemon. A nil config selects the defaults.
func New(l logger.Logger, cfg *config.Config) *Daemon {
	if l == nil {
		l = logger.Nop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Daemon{log: l, cfg: cfg}
}

// Run builds the component graph and blocks until ctx is cancelled or a
// component fails. All components are torn down before it returns.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		close(d.done)
		d.mu.Unlock()
		cancel()
	}()

	if d.cfg.SocketPath != "" {
		os.Setenv(common.SocketPathEnv, d.cfg.SocketPath)
	}

	loop, err := eventloop.New(d.log)
	if err != nil {
		return fmt.Errorf("error creating event loop: %w", err)
	}
	defer loop.Close()

	var trace *tracedb.TraceDB
	if d.cfg.TraceDBPath != "" {
		trace, err = tracedb.Open(d.cfg.TraceDBPath)
		if err != nil {
			return fmt.Errorf("error opening trace store: %w", err)
		}
		defer trace.Close()
		d.log.Info("frame tracing to %s, keeping %d samples", d.cfg.TraceDBPath, d.cfg.TraceKeep)
	}

	vblank := pacelib.NewVBlankTimer(nil, d.cfg.Display.IntervalNanos(), d.cfg.Display.RedzoneNanos)

	a := api.New(d.log, vblank, loop, trace, d.cfg.Display.RefreshRateHz)
	for _, sc := range d.cfg.Surfaces {
		if err := a.AddSurface(sc); err != nil {
			return fmt.Errorf("error adding surface %q: %w", sc.Name, err)
		}
	}

	d.startMaintenance(ctx, a, trace)

	var wg sync.WaitGroup
	errc := make(chan error, 2)

	wg.Add(1)
	pacelib.SafeGo(d.log, &wg, "event-loop", nil, func() {
		err := loop.Run(ctx)
		if err != nil && !errors.Is(err, eventloop.ErrClosed) && !errors.Is(err, context.Canceled) {
			errc <- fmt.Errorf("event loop: %w", err)
		}
	})

	a.Start(ctx)

	srv := server.New(d.log, a.Methods(), d.cfg.RPCPort)
	wg.Add(1)
	pacelib.SafeGo(d.log, &wg, "rpc-server", nil, func() {
		if err := srv.Start(ctx); err != nil {
			errc <- fmt.Errorf("rpc server: %w", err)
		}
	})

	d.log.Info("framepaced %s running with %d surface(s)", common.Version, len(d.cfg.Surfaces))

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
		cancel()
	}

	_ = srv.Shutdown()
	a.Close()
	_ = loop.Close()
	wg.Wait()
	return runErr
}

// Shutdown cancels a running daemon and waits briefly for Run to
// unwind.
func (d *Daemon) Shutdown() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-time.After(shutdownGrace):
		return errors.New("shutdown timed out")
	}
}

// IsRunning reports whether Run is active.
func (d *Daemon) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// startMaintenance schedules trace pruning and the periodic pacing
// summary.
func (d *Daemon) startMaintenance(ctx context.Context, a *api.Api, trace *tracedb.TraceDB) {
	sched := maintenance.New(ctx, func(name string) {
		switch name {
		case jobPruneTrace:
			pruned, err := trace.PruneTo(d.cfg.TraceKeep)
			if err != nil {
				d.log.Error("trace prune: %v", err)
				return
			}
			if pruned > 0 {
				d.log.Info("pruned %d trace samples", pruned)
			}
		case jobSummary:
			d.logSummary(a)
		}
	})

	if trace != nil && maintenance.ValidCron(d.cfg.PruneCron) {
		sched.Add(maintenance.Job{Name: jobPruneTrace, CronExpr: d.cfg.PruneCron})
	}
	if maintenance.ValidCron(d.cfg.SummaryCron) {
		sched.Add(maintenance.Job{Name: jobSummary, CronExpr: d.cfg.SummaryCron})
	}
}

// logSummary emits one line of pacing counters per surface.
func (d *Daemon) logSummary(a *api.Api) {
	for _, s := range a.SurfaceStats() {
		d.log.Info("surface %q: marked=%d released=%d flushed=%d fallbacks=%d overacquires=%d",
			s.Surface, s.FramesMarked, s.FramesReleased, s.FramesFlushed,
			s.WakeupFallbacks, s.OverAcquires)
	}
}
