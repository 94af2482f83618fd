package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const pidFileName = "daemon.pid"

// getPidFilePath returns the path to the daemon PID file in dir.
func getPidFilePath(dir string) string {
	return filepath.Join(dir, pidFileName)
}

// WritePidFile writes the current process ID to the PID file.
func WritePidFile(dir string) error {
	pid := os.Getpid()
	return os.WriteFile(getPidFilePath(dir), []byte(strconv.Itoa(pid)), 0644)
}

// ReadPidFile reads and returns the PID from the PID file.
func ReadPidFile(dir string) (int, error) {
	data, err := os.ReadFile(getPidFilePath(dir))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes the PID file.
func RemovePidFile(dir string) error {
	err := os.Remove(getPidFilePath(dir))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
