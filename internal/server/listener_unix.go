//go:build !windows

package server

import (
	"fmt"
	"net"
	"os"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/pkg/logger"
)

// createListener creates a Unix socket listener with TCP fallback.
// Transport priority: Unix socket > TCP.
func (s *Server) createListener() (net.Listener, error) {
	if forceTCP() {
		s.log.Info("force TCP mode enabled, using TCP listener")
		return net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	}

	path := socketPath()
	_ = os.Remove(path)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: path,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("unix socket unavailable: %v", err)
		s.log.Warning("falling back to tcp")
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %s", tcpErr.Error())
		}
		return tcpListener, nil
	}
	_ = os.Chmod(path, 0700)
	return l, nil
}

func removeSocketFile(l logger.Logger) {
	path := socketPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		l.Warning("removing socket file: %v", err)
	}
}
