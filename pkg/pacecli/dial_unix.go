//go:build !windows

package pacecli

import (
	"fmt"
	"net"
)

// dial connects to the daemon via the unix socket, falling back to TCP.
// Transport priority: unix socket > TCP.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("force TCP mode enabled")
		return dialFunc("tcp", tcpAddress())
	}

	debugLog("attempting connection via unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr != nil {
		debugLog("unix socket connection failed: %v, falling back to TCP", unixErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		return conn, nil
	}
	return conn, nil
}
