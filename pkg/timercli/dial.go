package timercli

import (
	"fmt"
	"net"
	"time"
)

var dialFunc = net.Dial

// dial connects to the daemon over the Unix socket, falling back to TCP.
// With WARPTIMER_FORCE_TCP=1 the socket is skipped.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("TCP forced, dialing %s", tcpAddress())
		return dialFunc("tcp", tcpAddress())
	}
	debugLog("Attempting connection via Unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr == nil {
		return conn, nil
	}
	debugLog("Unix socket connection failed: %v, falling back to TCP", unixErr)
	conn, err := dialFunc("tcp", tcpAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
	}
	debugLog("Connected via TCP fallback to %s", tcpAddress())
	return conn, nil
}

// isDaemonRunning reports whether something answers on the daemon's address.
func isDaemonRunning() bool {
	network, address := "unix", socketPath()
	if forceTCP() {
		network, address = "tcp", tcpAddress()
	}
	conn, err := net.DialTimeout(network, address, socketDialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func pollDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}
