// Package server exposes the daemon's JSON-RPC control endpoint over a
// local socket, with a WebSocket bridge for browser and tooling clients.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/framepace/framepace/pkg/logger"
	"github.com/framepace/framepace/pkg/pacelib"
)

// Server accepts RPC connections from CLI clients over a local socket
// and runs one jrpc2 server per connection. A unix socket (or named
// pipe on Windows) is the primary transport, falling back to loopback
// TCP when socket creation fails.
type Server struct {
	log      logger.Logger
	mux      handler.Map
	port     int
	ws       *WebServer
	listener net.Listener
	mu       sync.Mutex
	wg       sync.WaitGroup
}

// New creates a Server dispatching to the given method map. The
// WebSocket bridge listens on port+1.
func New(l logger.Logger, mux handler.Map, port int) *Server {
	if l == nil {
		l = logger.Nop()
	}
	return &Server{
		log:  l,
		mux:  mux,
		port: port,
		ws:   NewWebServer(l, mux, port+1),
	}
}

// Start begins accepting connections and blocks until the context is
// cancelled or the listener fails. The WebSocket bridge runs in the
// background for the same lifetime.
func (s *Server) Start(ctx context.Context) error {
	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("control endpoint listening on %s", l.Addr())

	pacelib.SafeGo(s.log, nil, "ws-bridge", nil, func() {
		if err := s.ws.Start(); err != nil {
			s.log.Error("websocket bridge: %v", err)
		}
	})

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
			}
			s.log.Error("accept: %v", err)
			continue
		}
		s.wg.Add(1)
		pacelib.SafeGo(s.log, &s.wg, "rpc-conn", nil, func() {
			s.serveConn(ctx, conn)
		})
	}
}

// serveConn runs a jrpc2 server over one connection until the client
// disconnects or the context is cancelled.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	srv := jrpc2.NewServer(s.mux, nil)
	srv.Start(channel.Line(conn, conn))

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		srv.Stop()
		<-done
	case <-done:
	}
}

// Shutdown closes the listener, stops the WebSocket bridge and removes
// the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warning("closing listener: %v", err)
		}
		s.listener = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ws.Shutdown(shutdownCtx); err != nil {
		s.log.Warning("shutting down websocket bridge: %v", err)
	}

	removeSocketFile(s.log)
	return nil
}
