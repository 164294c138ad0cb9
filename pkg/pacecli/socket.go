//go:build !windows

package pacecli

import (
	"os"
	"path/filepath"

	"github.com/framepace/framepace/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "framepace.sock")
}
