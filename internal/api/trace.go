package api

import (
	"context"

	"github.com/creachadair/jrpc2"

	"github.com/framepace/framepace/common"
)

// Trace returns recent frame timing samples from the trace store.
func (a *Api) Trace(ctx context.Context, params *common.TraceParams) (*common.TraceResult, error) {
	if a.trace == nil {
		return nil, jrpc2.Errorf(codeTraceDisabled, "frame tracing is disabled")
	}

	samples, err := a.trace.Recent(params.Surface, params.Limit)
	if err != nil {
		return nil, err
	}

	res := &common.TraceResult{Samples: make([]common.TraceSample, 0, len(samples))}
	for _, s := range samples {
		res.Samples = append(res.Samples, common.TraceSample{
			Surface:         s.Surface,
			SubmitTime:      s.SubmitTime,
			CompleteTime:    s.CompleteTime,
			ReleaseTime:     s.ReleaseTime,
			TargetLatch:     s.TargetLatch,
			ScheduledWakeup: s.ScheduledWakeup,
			Fallback:        s.Fallback,
		})
	}
	return res, nil
}
