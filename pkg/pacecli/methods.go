package pacecli

import (
	"context"

	"github.com/framepace/framepace/common"
)

// Status reports pacing state. An empty surface selects all surfaces.
func (c *Client) Status(ctx context.Context, surface string) (*common.StatusResult, error) {
	return invoke[common.StatusResult](ctx, c, common.MethodStatus, &common.StatusParams{Surface: surface})
}

// SetRefresh reconfigures the display refresh rate the daemon paces
// against. redzoneNanos of zero keeps the daemon's current redzone.
func (c *Client) SetRefresh(ctx context.Context, refreshRateHz float64, redzoneNanos uint64) (*common.SetRefreshResult, error) {
	return invoke[common.SetRefreshResult](ctx, c, common.MethodSetRefresh, &common.SetRefreshParams{
		RefreshRateHz: refreshRateHz,
		RedzoneNanos:  redzoneNanos,
	})
}

// SetBuffers resizes a surface's swapchain.
func (c *Client) SetBuffers(ctx context.Context, surface string, count uint32) (*common.SetBuffersResult, error) {
	return invoke[common.SetBuffersResult](ctx, c, common.MethodSetBuffers, &common.SetBuffersParams{
		Surface: surface,
		Count:   count,
	})
}

// Flush releases every held buffer on one surface, or all surfaces when
// surface is empty.
func (c *Client) Flush(ctx context.Context, surface string) (*common.FlushResult, error) {
	return invoke[common.FlushResult](ctx, c, common.MethodFlush, &common.FlushParams{Surface: surface})
}

// Trace fetches recent frame timing samples.
func (c *Client) Trace(ctx context.Context, surface string, limit int) (*common.TraceResult, error) {
	return invoke[common.TraceResult](ctx, c, common.MethodTrace, &common.TraceParams{
		Surface: surface,
		Limit:   limit,
	})
}

// Version reports the daemon version and build metadata.
func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	return invoke[common.VersionResult](ctx, c, common.MethodVersion, nil)
}
