// Package server exposes the timer engine over JSON-RPC 2.0: newline
// delimited on a Unix socket (TCP fallback) for the CLI, and over HTTP and
// websocket for viewers.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/warptimer/internal/engine"
	"github.com/warpdl/warptimer/pkg/logger"
)

// Config configures a Server.
type Config struct {
	RPCConfig
	// Port is the TCP fallback port; the web server uses Port+1.
	Port int
	// AutoVisibility derives the engine's visibility from the number of
	// attached websocket viewers.
	AutoVisibility bool
}

// Server accepts CLI connections and owns the web server.
type Server struct {
	log      logger.Logger
	rpc      *RPCServer
	notifier *RPCNotifier
	web      *WebServer
	port     int
	listener net.Listener
	// socket is the Unix socket this server bound, empty on TCP.
	socket   *boundSocket
	mu       sync.Mutex
	stopped  bool
	conns    sync.WaitGroup
}

// NewServer creates a Server for e. notifier must be the Renderer e was
// created with.
func NewServer(l logger.Logger, e *engine.Engine, notifier *RPCNotifier, cfg *Config) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	rpc := NewRPCServer(&cfg.RPCConfig, e)
	var onVisibility func(bool)
	if cfg.AutoVisibility {
		onVisibility = func(hidden bool) {
			if err := e.SetVisibility(context.Background(), hidden); err != nil {
				l.Warning("server: set visibility: %v", err)
			}
		}
	}
	return &Server{
		log:      l,
		rpc:      rpc,
		notifier: notifier,
		port:     cfg.Port,
		web:      NewWebServer(l, rpc, notifier, cfg.Port+1, cfg.Secret, onVisibility),
	}
}

// Start serves until ctx is cancelled. The web server only runs when a
// secret is configured. Shutdown has completed by the time Start returns.
func (s *Server) Start(ctx context.Context) error {
	defer s.Shutdown()

	go s.notifier.Run(ctx)
	if s.web.secret != "" {
		go func() {
			if err := s.web.Start(); err != nil {
				s.log.Error("server: web server: %v", err)
			}
		}()
	} else {
		s.log.Info("server: no rpc secret, web endpoints disabled")
	}

	l, sock, err := s.createListener()
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = sock.remove()
		return l.Close()
	}
	s.listener = l
	s.socket = sock
	s.mu.Unlock()
	s.log.Info("server: listening on %s", l.Addr())

	quit := make(chan struct{})
	defer close(quit)
	go func() {
		select {
		case <-ctx.Done():
			s.Shutdown()
		case <-quit:
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.conns.Wait()
				return nil
			}
			s.log.Warning("server: accept: %v", err)
			continue
		}
		s.conns.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.conns.Done()
	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(channel.Line(conn, conn))
	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)
	_ = srv.Wait()
}

// Shutdown closes the listener, disconnects every client, stops the web
// server and removes the socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Warning("server: close listener: %v", err)
		}
		s.listener = nil
	}
	s.notifier.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.web.Shutdown(shutdownCtx); err != nil {
		s.log.Warning("server: web shutdown: %v", err)
	}
	s.rpc.Close()

	if err := s.socket.remove(); err != nil {
		s.log.Warning("server: remove socket: %v", err)
	}
	s.socket = nil
	return nil
}
