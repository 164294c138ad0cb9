package daemon

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"

	"github.com/framepace/framepace/common"
	"github.com/framepace/framepace/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SocketPath = filepath.Join(t.TempDir(), "framepaced.sock")
	// Keep maintenance quiet during tests.
	cfg.TraceDBPath = ""
	return cfg
}

// TestRun_ServesControlEndpoint boots the full daemon and drives one
// status call through the control socket.
func TestRun_ServesControlEndpoint(t *testing.T) {
	cfg := testConfig(t)
	d := New(nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	var conn net.Conn
	var err error
	for i := 0; i < 100; i++ {
		conn, err = net.Dial("unix", cfg.SocketPath)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to dial daemon: %v", err)
	}

	cli := jrpc2.NewClient(channel.Line(conn, conn), nil)
	var res common.StatusResult
	if err := cli.CallResult(ctx, common.MethodStatus, &common.StatusParams{}, &res); err != nil {
		t.Fatalf("status call failed: %v", err)
	}
	if len(res.Surfaces) != 1 || res.Surfaces[0].Surface != "primary" {
		t.Fatalf("unexpected surfaces: %+v", res.Surfaces)
	}
	cli.Close()

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("daemon exited with error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("daemon did not stop")
	}
}

// TestRun_AlreadyRunning verifies the double-start guard.
func TestRun_AlreadyRunning(t *testing.T) {
	cfg := testConfig(t)
	d := New(nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	for i := 0; i < 100 && !d.IsRunning(); i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if !d.IsRunning() {
		t.Fatalf("daemon did not start")
	}

	if err := d.Run(ctx); err != ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	if err := d.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	select {
	case <-errc:
	case <-time.After(10 * time.Second):
		t.Fatalf("daemon did not stop")
	}
}

// TestShutdown_NotRunning verifies shutting down a stopped daemon fails.
func TestShutdown_NotRunning(t *testing.T) {
	d := New(nil, testConfig(t))
	if err := d.Shutdown(); err != ErrNotRunning {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}
