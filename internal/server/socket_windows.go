//go:build windows

package server

import (
	"os"
	"strings"

	"github.com/framepace/framepace/common"
)

// pipePath returns the Windows named pipe path, normalizing a bare pipe
// name from the environment into the pipe namespace.
func pipePath() string {
	if name := os.Getenv(common.PipeNameEnv); name != "" {
		if strings.HasPrefix(name, `\\.\pipe\`) {
			return name
		}
		return `\\.\pipe\` + name
	}
	return common.DefaultPipePath
}
