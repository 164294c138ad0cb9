//go:build windows

package pacecli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

// dialTimeout bounds how long a pipe connection attempt may block.
const dialTimeout = 5 * time.Second

// dialPipeFunc points to the pipe dialer so tests can intercept it.
var dialPipeFunc = dialPipeImpl

func dialPipeImpl(path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial connects to the daemon via the named pipe, falling back to TCP.
// Transport priority: named pipe > TCP.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("force TCP mode enabled")
		return dialFunc("tcp", tcpAddress())
	}

	path := pipePath()
	debugLog("attempting connection via named pipe at %s", path)
	conn, pipeErr := dialPipeFunc(path)
	if pipeErr != nil {
		debugLog("named pipe connection failed: %v, falling back to TCP", pipeErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: named pipe error: %v; tcp error: %w", pipeErr, err)
		}
		return conn, nil
	}
	return conn, nil
}
