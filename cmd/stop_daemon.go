package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warptimer/cmd/common"
	"github.com/warpdl/warptimer/internal/config"
)

func stopDaemon(ctx *cli.Context) error {
	dir, err := config.Dir(os.Getenv)
	if err != nil {
		common.PrintRuntimeErr(ctx, "stop-daemon", "config_dir", err)
		return nil
	}
	pid, err := ReadPidFile(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Daemon is not running (PID file not found)")
			return nil
		}
		common.PrintRuntimeErr(ctx, "stop-daemon", "read_pid", err)
		return nil
	}

	fmt.Printf("Stopping daemon (PID %d)...\n", pid)
	if err := killDaemon(pid); err != nil {
		common.PrintRuntimeErr(ctx, "stop-daemon", "kill", err)
		return nil
	}
	// the daemon removes its own PID file on exit
	fmt.Println("Daemon stopped successfully")
	return nil
}
