package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/logger"
)

// WebServer serves the JSON-RPC methods over HTTP POST and websocket.
// Websocket connections are viewers: they receive push notifications and
// drive automatic visibility.
type WebServer struct {
	port     int
	log      logger.Logger
	rpc      *RPCServer
	notifier *RPCNotifier
	viewers  *viewerTracker
	secret   string
	server   *http.Server
	closed   bool
	mu       sync.Mutex
}

// NewWebServer creates a WebServer on port. onVisibility, if non-nil, is
// told when the first viewer attaches and the last one leaves.
func NewWebServer(l logger.Logger, rpc *RPCServer, notifier *RPCNotifier, port int, secret string, onVisibility func(hidden bool)) *WebServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &WebServer{
		port:     port,
		log:      l,
		rpc:      rpc,
		notifier: notifier,
		viewers:  &viewerTracker{onChange: onVisibility},
		secret:   secret,
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", requireToken(s.secret, s.rpc.bridge))
	mux.Handle("/jsonrpc/ws", requireToken(s.secret, http.HandlerFunc(s.serveWS)))
	return mux
}

func (s *WebServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("server: websocket accept: %v", err)
		return
	}
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(&wsChannel{conn: conn, ctx: r.Context()})
	s.notifier.Register(srv)
	s.viewers.attach()
	defer func() {
		s.viewers.detach()
		s.notifier.Unregister(srv)
	}()
	if err := srv.Wait(); err != nil {
		s.log.Info("server: viewer disconnected: %v", err)
	}
}

func (s *WebServer) addr() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, s.port)
}

// Start listens on the web port and blocks until Shutdown. After Shutdown
// it returns nil without listening.
func (s *WebServer) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.server = &http.Server{
		Addr:     s.addr(),
		Handler:  s.handler(),
		ErrorLog: logger.ToStdLogger(s.log),
	}
	srv := s.server
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
