package api

import (
	"context"
	"sort"

	"github.com/creachadair/jrpc2"

	"github.com/framepace/framepace/common"
)

// Status reports the pacing state of one or all surfaces.
func (a *Api) Status(ctx context.Context, params *common.StatusParams) (*common.StatusResult, error) {
	interval, redzone := a.vblank.RefreshInterval()
	a.mu.Lock()
	refreshHz := a.refreshHz
	a.mu.Unlock()

	res := &common.StatusResult{
		Version:       common.Version,
		RefreshRateHz: refreshHz,
		IntervalNanos: interval,
		RedzoneNanos:  redzone,
	}

	if params.Surface != "" {
		s, ok := a.surfaces.Get(params.Surface)
		if !ok {
			return nil, jrpc2.Errorf(codeUnknownSurface, "unknown surface %q", params.Surface)
		}
		res.Surfaces = []common.SurfaceStatus{surfaceStatus(s)}
		return res, nil
	}

	a.surfaces.Range(func(_ string, s *Surface) bool {
		res.Surfaces = append(res.Surfaces, surfaceStatus(s))
		return true
	})
	sort.Slice(res.Surfaces, func(i, j int) bool {
		return res.Surfaces[i].Surface < res.Surfaces[j].Surface
	})
	return res, nil
}

// SurfaceStats snapshots every surface's pacing counters, sorted by
// name. Used by the daemon's periodic summary log.
func (a *Api) SurfaceStats() []common.SurfaceStatus {
	var out []common.SurfaceStatus
	a.surfaces.Range(func(_ string, s *Surface) bool {
		out = append(out, surfaceStatus(s))
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Surface < out[j].Surface
	})
	return out
}

func surfaceStatus(s *Surface) common.SurfaceStatus {
	acquired, total := s.limiter.Counts()
	sched := s.limiter.Schedule()
	stats := s.limiter.Stats()
	return common.SurfaceStatus{
		Surface:      s.name,
		Armed:        s.limiter.Armed(),
		Acquired:     acquired,
		TotalBuffers: total,
		Schedule: common.ScheduleInfo{
			TargetRefresh:   sched.TargetRefresh,
			TargetLatch:     sched.TargetLatch,
			ScheduledWakeup: sched.ScheduledWakeup,
		},
		FrameInterval:   s.limiter.ObservedFrameInterval(),
		FramesMarked:    stats.FramesMarked,
		FramesReleased:  stats.FramesReleased,
		FramesFlushed:   stats.FramesFlushed,
		WakeupFallbacks: stats.WakeupFallbacks,
		OverAcquires:    stats.OverAcquires,
	}
}
