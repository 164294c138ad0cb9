package api

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/internal/config"
	"github.com/framepace/framepace/internal/eventloop"
	"github.com/framepace/framepace/internal/tracedb"
	"github.com/framepace/framepace/pkg/pacelib"
)

func newTestApi(t *testing.T, trace *tracedb.TraceDB) *Api {
	t.Helper()
	loop, err := eventloop.New(nil)
	if err != nil {
		t.Fatalf("failed to create loop: %v", err)
	}
	t.Cleanup(func() { loop.Close() })

	vblank := pacelib.NewVBlankTimer(nil, 16_666_666, 2_000_000)
	a := New(nil, vblank, loop, trace, 60)
	if err := a.AddSurface(config.SurfaceConfig{
		Name:           "primary",
		Buffers:        3,
		FrameTimeNanos: 8_000_000,
	}); err != nil {
		t.Fatalf("failed to add surface: %v", err)
	}
	return a
}

// TestStatus_ReportsSurfaces verifies the status method reflects the
// registry and the swapchain feedback pushed at surface creation.
func TestStatus_ReportsSurfaces(t *testing.T) {
	a := newTestApi(t, nil)

	res, err := a.Status(context.Background(), &common.StatusParams{})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if res.Version != common.Version {
		t.Fatalf("unexpected version %q", res.Version)
	}
	if res.IntervalNanos != 16_666_666 {
		t.Fatalf("unexpected interval %d", res.IntervalNanos)
	}
	if len(res.Surfaces) != 1 {
		t.Fatalf("expected 1 surface, got %d", len(res.Surfaces))
	}
	s := res.Surfaces[0]
	if s.Surface != "primary" || s.TotalBuffers != 3 || s.Acquired != 0 {
		t.Fatalf("unexpected surface status: %+v", s)
	}
}

// TestStatus_UnknownSurface verifies the unknown-surface error path.
func TestStatus_UnknownSurface(t *testing.T) {
	a := newTestApi(t, nil)

	if _, err := a.Status(context.Background(), &common.StatusParams{Surface: "nope"}); err == nil {
		t.Fatalf("expected error for unknown surface")
	}
}

// TestSetBuffers_ResizesAndFlushes verifies a swapchain resize reaches the
// limiter through the pool feedback and flushes held buffers.
func TestSetBuffers_ResizesAndFlushes(t *testing.T) {
	a := newTestApi(t, nil)
	s, _ := a.surfaces.Get("primary")

	buf, ok := s.pool.Acquire()
	if !ok {
		t.Fatalf("failed to acquire buffer")
	}
	s.limiter.MarkFrame(buf, 1_000, 2_000, false)

	res, err := a.SetBuffers(context.Background(), &common.SetBuffersParams{
		Surface: "primary",
		Count:   5,
	})
	if err != nil {
		t.Fatalf("setBuffers failed: %v", err)
	}
	if res.Count != 5 {
		t.Fatalf("unexpected count %d", res.Count)
	}

	acquired, total := s.limiter.Counts()
	if acquired != 0 || total != 5 {
		t.Fatalf("expected flushed limiter at depth 5, got acquired=%d total=%d", acquired, total)
	}

	if _, err := a.SetBuffers(context.Background(), &common.SetBuffersParams{Surface: "primary"}); err == nil {
		t.Fatalf("expected error for zero buffer count")
	}
}

// TestSetRefresh_Reconfigures verifies refresh updates reach the oracle
// and invalid rates are rejected.
func TestSetRefresh_Reconfigures(t *testing.T) {
	a := newTestApi(t, nil)

	res, err := a.SetRefresh(context.Background(), &common.SetRefreshParams{RefreshRateHz: 144})
	if err != nil {
		t.Fatalf("setRefresh failed: %v", err)
	}
	hz := 144.0
	if res.IntervalNanos != uint64(1e9/hz) {
		t.Fatalf("unexpected interval %d", res.IntervalNanos)
	}

	if _, err := a.SetRefresh(context.Background(), &common.SetRefreshParams{}); err == nil {
		t.Fatalf("expected error for zero refresh rate")
	}
}

// TestFlush_ReleasesHeldBuffers verifies flush drains the hold queue and
// reports the released count.
func TestFlush_ReleasesHeldBuffers(t *testing.T) {
	a := newTestApi(t, nil)
	s, _ := a.surfaces.Get("primary")

	for i := 0; i < 2; i++ {
		buf, ok := s.pool.Acquire()
		if !ok {
			t.Fatalf("failed to acquire buffer %d", i)
		}
		s.limiter.MarkFrame(buf, 1_000, 2_000, false)
	}

	res, err := a.Flush(context.Background(), &common.FlushParams{})
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if res.Released != 2 {
		t.Fatalf("expected 2 released, got %d", res.Released)
	}
	if got := s.pool.FreeCount(); got != 3 {
		t.Fatalf("expected buffers back in pool, free=%d", got)
	}
}

// TestTrace_DisabledAndEnabled verifies the trace method's disabled error
// and its passthrough to the store.
func TestTrace_DisabledAndEnabled(t *testing.T) {
	a := newTestApi(t, nil)
	if _, err := a.Trace(context.Background(), &common.TraceParams{}); err == nil {
		t.Fatalf("expected error with tracing disabled")
	}

	db, err := tracedb.Open(filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("failed to open trace db: %v", err)
	}
	defer db.Close()
	if err := db.Record(tracedb.Sample{Surface: "primary", SubmitTime: 42}); err != nil {
		t.Fatalf("failed to seed trace: %v", err)
	}

	a2 := newTestApi(t, db)
	res, err := a2.Trace(context.Background(), &common.TraceParams{Surface: "primary"})
	if err != nil {
		t.Fatalf("trace failed: %v", err)
	}
	if len(res.Samples) != 1 || res.Samples[0].SubmitTime != 42 {
		t.Fatalf("unexpected samples: %+v", res.Samples)
	}
}

// TestVersion_ReportsBuildInfo sanity-checks the version method.
func TestVersion_ReportsBuildInfo(t *testing.T) {
	a := newTestApi(t, nil)
	res, err := a.Version(context.Background())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if res.Version != common.Version {
		t.Fatalf("unexpected version %q", res.Version)
	}
}
