package server

import (
	"fmt"
	"net"
	"os"

	"github.com/warpdl/warptimer/common"
)

// createListener creates a Unix socket listener with TCP fallback.
// Transport priority: Unix socket > TCP. WARPTIMER_FORCE_TCP=1 skips the socket.
// The returned boundSocket is nil when serving TCP.
func (s *Server) createListener() (net.Listener, *boundSocket, error) {
	if os.Getenv(common.ForceTCPEnv) == "1" {
		l, err := s.listenTCP()
		return l, nil, err
	}
	path := socketPath()
	_ = os.Remove(path)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: path,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("server: unix socket unavailable (%v), trying tcp", err)
		l, err := s.listenTCP()
		return l, nil, err
	}
	// the file is removed by Shutdown, only if it is still ours
	l.SetUnlinkOnClose(false)
	_ = os.Chmod(path, 0700)
	return l, newBoundSocket(path), nil
}

func (s *Server) listenTCP() (net.Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	if err != nil {
		return nil, fmt.Errorf("error listening: %w", err)
	}
	return l, nil
}
