// Package common provides the shared types and constants of the framepace
// control API, used by both the daemon's RPC server and the CLI client.
package common

// Version is the framepace release version.
const Version = "0.1.0"

// Environment variable names for configuration.
const (
	// SocketPathEnv overrides the control socket path.
	SocketPathEnv = "FRAMEPACE_SOCKET_PATH"

	// ConfigPathEnv overrides the daemon config file path.
	ConfigPathEnv = "FRAMEPACE_CONFIG"

	// TCPPortEnv overrides the TCP fallback port.
	TCPPortEnv = "FRAMEPACE_TCP_PORT"

	// PipeNameEnv overrides the Windows named pipe path.
	PipeNameEnv = "FRAMEPACE_PIPE_NAME"

	// ForceTCPEnv, when set to "1", skips the socket/pipe transport and
	// uses TCP directly.
	ForceTCPEnv = "FRAMEPACE_FORCE_TCP"

	// DebugEnv, when set to "1", enables client debug logging.
	DebugEnv = "FRAMEPACE_DEBUG"
)

// DefaultTCPPort is the TCP fallback port for the control endpoint.
const DefaultTCPPort = 3784

// TCPHost is the bind address for the TCP fallback listener. Loopback
// only; the control endpoint is not meant to leave the machine.
const TCPHost = "127.0.0.1"

// DefaultPipePath is the default Windows named pipe for the control
// endpoint.
const DefaultPipePath = `\\.\pipe\framepace`

// JSON-RPC method names exposed by the daemon.
const (
	MethodStatus     = "pacer.status"
	MethodSetRefresh = "pacer.setRefresh"
	MethodSetBuffers = "pacer.setBuffers"
	MethodFlush      = "pacer.flush"
	MethodTrace      = "pacer.trace"
	MethodVersion    = "system.getVersion"
)
