package timercli

import "time"

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
	socketDialTimeout  = 100 * time.Millisecond
)

var (
	ensureDaemonFunc = ensureDaemon
	spawnDaemonFunc  = spawnDaemon
)

// ensureDaemon spawns the daemon unless one already answers.
func ensureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnDaemonFunc(); err != nil {
		return err
	}
	return pollDaemon(daemonStartTimeout)
}
