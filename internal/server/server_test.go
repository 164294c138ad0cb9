package server

import (
	"context"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/framepace/framepace/common"
)

func testMux() handler.Map {
	return handler.Map{
		"test.ping": handler.New(func(ctx context.Context) (string, error) {
			return "pong", nil
		}),
	}
}

// TestSocketPathDefault verifies the default socket lives in the temp
// directory.
func TestSocketPathDefault(t *testing.T) {
	t.Setenv(common.SocketPathEnv, "")
	got := socketPath()
	want := filepath.Join(os.TempDir(), "framepace.sock")
	if got != want {
		t.Fatalf("socketPath() = %q; want %q", got, want)
	}
}

// TestSocketPathEnvOverride verifies the env var takes priority.
func TestSocketPathEnvOverride(t *testing.T) {
	t.Setenv(common.SocketPathEnv, "/tmp/custom.sock")
	if got := socketPath(); got != "/tmp/custom.sock" {
		t.Fatalf("socketPath() = %q; want /tmp/custom.sock", got)
	}
}

// TestServeConn_RoundTrip runs one RPC session over an in-memory pipe.
func TestServeConn_RoundTrip(t *testing.T) {
	srvConn, cliConn := net.Pipe()
	s := New(nil, testMux(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.serveConn(ctx, srvConn)
		close(done)
	}()

	cli := jrpc2.NewClient(channel.Line(cliConn, cliConn), nil)
	var res string
	if err := cli.CallResult(ctx, "test.ping", nil, &res); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if res != "pong" {
		t.Fatalf("unexpected result %q", res)
	}

	cli.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("serveConn did not exit after client close")
	}
}

// TestServeConn_UnknownMethod verifies an unregistered method returns a
// JSON-RPC error rather than killing the session.
func TestServeConn_UnknownMethod(t *testing.T) {
	srvConn, cliConn := net.Pipe()
	s := New(nil, testMux(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.serveConn(ctx, srvConn)

	cli := jrpc2.NewClient(channel.Line(cliConn, cliConn), nil)
	defer cli.Close()

	var res string
	err := cli.CallResult(ctx, "no.such.method", nil, &res)
	if err == nil {
		t.Fatalf("expected error for unknown method")
	}
	if !strings.Contains(err.Error(), "method not found") {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cli.CallResult(ctx, "test.ping", nil, &res); err != nil {
		t.Fatalf("session died after unknown method: %v", err)
	}
}

// TestWebServer_RPCOverWebSocket runs one RPC call through the
// WebSocket bridge.
func TestWebServer_RPCOverWebSocket(t *testing.T) {
	ws := NewWebServer(nil, testMux(), 0)
	ts := httptest.NewServer(ws.handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rpc"
	conn, _, err := cws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}

	ch := &wsChannel{conn: conn, ctx: ctx}
	cli := jrpc2.NewClient(ch, nil)
	defer cli.Close()

	var res string
	if err := cli.CallResult(ctx, "test.ping", nil, &res); err != nil {
		t.Fatalf("call over websocket failed: %v", err)
	}
	if res != "pong" {
		t.Fatalf("unexpected result %q", res)
	}
}

// TestServer_StartAndShutdown exercises the unix socket accept loop end
// to end.
func TestServer_StartAndShutdown(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "ctl.sock")
	t.Setenv(common.SocketPathEnv, sock)

	s := New(nil, testMux(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- s.Start(ctx) }()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", sock)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to dial socket: %v", err)
	}

	cli := jrpc2.NewClient(channel.Line(conn, conn), nil)
	var res string
	if err := cli.CallResult(ctx, "test.ping", nil, &res); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	cli.Close()

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("server exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}

	if _, err := os.Stat(sock); !os.IsNotExist(err) {
		t.Fatalf("socket file not removed on shutdown")
	}
}
