package common

// StatusParams is the input for pacer.status. An empty surface selects all
// surfaces.
type StatusParams struct {
	Surface string `json:"surface,omitempty"`
}

// ScheduleInfo mirrors the limiter's committed wakeup schedule.
type ScheduleInfo struct {
	TargetRefresh   uint64 `json:"targetRefresh"`
	TargetLatch     uint64 `json:"targetLatch"`
	ScheduledWakeup uint64 `json:"scheduledWakeup"`
}

// SurfaceStatus is one surface's pacing state.
type SurfaceStatus struct {
	Surface       string       `json:"surface"`
	Armed         bool         `json:"armed"`
	Acquired      uint32       `json:"acquired"`
	TotalBuffers  uint32       `json:"totalBuffers"`
	Schedule      ScheduleInfo `json:"schedule"`
	FrameInterval uint64       `json:"frameIntervalNanos"`

	FramesMarked    uint64 `json:"framesMarked"`
	FramesReleased  uint64 `json:"framesReleased"`
	FramesFlushed   uint64 `json:"framesFlushed"`
	WakeupFallbacks uint64 `json:"wakeupFallbacks"`
	OverAcquires    uint64 `json:"overAcquires"`
}

// StatusResult is the response for pacer.status.
type StatusResult struct {
	Version       string          `json:"version"`
	RefreshRateHz float64         `json:"refreshRateHz"`
	IntervalNanos uint64          `json:"intervalNanos"`
	RedzoneNanos  uint64          `json:"redzoneNanos"`
	Surfaces      []SurfaceStatus `json:"surfaces"`
}

// SetRefreshParams is the input for pacer.setRefresh.
type SetRefreshParams struct {
	RefreshRateHz float64 `json:"refreshRateHz"`
	RedzoneNanos  uint64  `json:"redzoneNanos,omitempty"`
}

// SetRefreshResult is the response for pacer.setRefresh.
type SetRefreshResult struct {
	IntervalNanos uint64 `json:"intervalNanos"`
	RedzoneNanos  uint64 `json:"redzoneNanos"`
}

// SetBuffersParams is the input for pacer.setBuffers.
type SetBuffersParams struct {
	Surface string `json:"surface"`
	Count   uint32 `json:"count"`
}

// SetBuffersResult is the response for pacer.setBuffers.
type SetBuffersResult struct {
	Surface string `json:"surface"`
	Count   uint32 `json:"count"`
}

// FlushParams is the input for pacer.flush. An empty surface flushes all
// surfaces.
type FlushParams struct {
	Surface string `json:"surface,omitempty"`
}

// FlushResult is the response for pacer.flush.
type FlushResult struct {
	Released uint32 `json:"released"`
}

// TraceParams is the input for pacer.trace.
type TraceParams struct {
	Surface string `json:"surface,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// TraceSample is one released frame's timing record.
type TraceSample struct {
	Surface         string `json:"surface"`
	SubmitTime      uint64 `json:"submitTime"`
	CompleteTime    uint64 `json:"completeTime"`
	ReleaseTime     uint64 `json:"releaseTime"`
	TargetLatch     uint64 `json:"targetLatch"`
	ScheduledWakeup uint64 `json:"scheduledWakeup"`
	Fallback        bool   `json:"fallback"`
}

// TraceResult is the response for pacer.trace.
type TraceResult struct {
	Samples []TraceSample `json:"samples"`
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}
