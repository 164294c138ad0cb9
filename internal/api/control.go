package api

import (
	"context"

	"github.com/creachadair/jrpc2"

	"github.com/framepace/framepace/common"
)

// SetRefresh reconfigures the refresh geometry the oracle predicts
// against. All surfaces pace against the shared display.
func (a *Api) SetRefresh(ctx context.Context, params *common.SetRefreshParams) (*common.SetRefreshResult, error) {
	if params.RefreshRateHz <= 0 {
		return nil, jrpc2.Errorf(codeInvalidParams, "refresh rate must be positive, got %v", params.RefreshRateHz)
	}
	interval := uint64(1e9 / params.RefreshRateHz)
	a.vblank.SetRefreshInterval(interval, params.RedzoneNanos)

	a.mu.Lock()
	a.refreshHz = params.RefreshRateHz
	a.mu.Unlock()

	gotInterval, gotRedzone := a.vblank.RefreshInterval()
	a.log.Info("refresh set to %.2fHz (interval %dns, redzone %dns)",
		params.RefreshRateHz, gotInterval, gotRedzone)
	return &common.SetRefreshResult{
		IntervalNanos: gotInterval,
		RedzoneNanos:  gotRedzone,
	}, nil
}

// SetBuffers resizes a surface's swapchain. The pool pushes the new depth
// to the limiter, which discards all pacing state tied to the old buffers.
func (a *Api) SetBuffers(ctx context.Context, params *common.SetBuffersParams) (*common.SetBuffersResult, error) {
	if params.Count == 0 {
		return nil, jrpc2.Errorf(codeInvalidParams, "buffer count must be positive")
	}
	s, ok := a.surfaces.Get(params.Surface)
	if !ok {
		return nil, jrpc2.Errorf(codeUnknownSurface, "unknown surface %q", params.Surface)
	}

	s.pool.Resize(params.Count)
	a.log.Info("surface %q resized to %d buffers", params.Surface, params.Count)
	return &common.SetBuffersResult{Surface: params.Surface, Count: params.Count}, nil
}

// Flush releases every held buffer on one or all surfaces.
func (a *Api) Flush(ctx context.Context, params *common.FlushParams) (*common.FlushResult, error) {
	if params.Surface != "" {
		s, ok := a.surfaces.Get(params.Surface)
		if !ok {
			return nil, jrpc2.Errorf(codeUnknownSurface, "unknown surface %q", params.Surface)
		}
		return &common.FlushResult{Released: s.limiter.ReleaseAllBuffers()}, nil
	}

	var released uint32
	a.surfaces.Range(func(_ string, s *Surface) bool {
		released += s.limiter.ReleaseAllBuffers()
		return true
	})
	return &common.FlushResult{Released: released}, nil
}
