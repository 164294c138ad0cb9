package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/framepace/framepace/pkg/logger"
)

// WebServer bridges WebSocket connections to the JSON-RPC control
// methods. Each accepted connection gets its own jrpc2 server over a
// wsChannel.
type WebServer struct {
	port   int
	log    logger.Logger
	mux    handler.Map
	server *http.Server
	mu     sync.Mutex
}

// NewWebServer creates the bridge listening on the given loopback port.
func NewWebServer(l logger.Logger, mux handler.Map, port int) *WebServer {
	return &WebServer{port: port, log: l, mux: mux}
}

func (s *WebServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("websocket accept: %v", err)
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.mux, nil)
	srv.Start(ch)
	if err := srv.Wait(); err != nil {
		s.log.Info("websocket session ended: %v", err)
	}
	_ = ch.Close()
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	return mux
}

func (s *WebServer) addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.port)
}

// Start runs the HTTP listener until Shutdown is called.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
