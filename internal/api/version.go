package api

import (
	"context"

	"github.com/framepace/framepace/common"
)

// Build metadata, overridable via -ldflags at release time.
var (
	BuildCommit = ""
	BuildType   = "dev"
)

// Version reports the daemon version and build metadata.
func (a *Api) Version(ctx context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   common.Version,
		Commit:    BuildCommit,
		BuildType: BuildType,
	}, nil
}
