package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/warptimer/cmd/common"
	tcommon "github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/internal/config"
	idaemon "github.com/warpdl/warptimer/internal/daemon"
	"github.com/warpdl/warptimer/internal/server"
	"github.com/warpdl/warptimer/pkg/credman/keyring"
	"github.com/warpdl/warptimer/pkg/logger"
)

const daemonShutdownTimeout = 10 * time.Second

var (
	manualVisibility bool

	daemonFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "manual-visibility",
			Usage:       "keep the fast cadence until a client hides it, instead of following attached viewers",
			Destination: &manualVisibility,
		},
	}
)

// daemonFs is the filesystem used for configuration, the key file and the
// file store. Tests swap in a memory filesystem.
var daemonFs afero.Fs = afero.NewOsFs()

// loadSettings resolves the config directory and loads config.yaml.
func loadSettings() (*config.Config, error) {
	dir, err := config.Dir(os.Getenv)
	if err != nil {
		return nil, err
	}
	return config.Load(daemonFs, dir, os.Getenv)
}

// newDaemonLogger logs to stdout and, when possible, to the configured log file.
func newDaemonLogger(s *config.Config) logger.Logger {
	std := logger.NewStandardLogger(log.New(os.Stdout, "", log.LstdFlags))
	if s.LogFile == "" {
		return std
	}
	if err := os.MkdirAll(filepath.Dir(s.LogFile), 0755); err != nil {
		std.Warning("daemon: log file disabled: %v", err)
		return std
	}
	file, err := logger.NewFileLogger(s.LogFile)
	if err != nil {
		std.Warning("daemon: log file disabled: %v", err)
		return std
	}
	return logger.NewMultiLogger(std, file)
}

// rpcSecret returns the bearer secret for the HTTP endpoints. The environment
// wins; otherwise the secret lives in the OS keyring with a key file fallback.
// An empty secret disables the HTTP endpoints.
func rpcSecret(s *config.Config, l logger.Logger) string {
	if v := os.Getenv(tcommon.RPCSecretEnv); v != "" {
		return v
	}
	secret, err := keyring.LoadOrCreate(
		keyring.NewKeyring(),
		keyring.NewFileKeyStore(daemonFs, s.Dir),
	)
	if err != nil {
		l.Warning("daemon: no rpc secret, web endpoints disabled: %v", err)
		return ""
	}
	return secret
}

func daemon(ctx *cli.Context) error {
	settings, err := loadSettings()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	l := newDaemonLogger(settings)
	defer l.Close()

	if err := os.MkdirAll(settings.Dir, 0755); err != nil {
		l.Warning("daemon: create config dir: %v", err)
	}
	if err := WritePidFile(settings.Dir); err != nil {
		l.Warning("daemon: write pid file: %v", err)
	}
	defer RemovePidFile(settings.Dir)

	runner, err := idaemon.New(&idaemon.Config{
		Settings: settings,
		RPC: server.RPCConfig{
			Secret:    rpcSecret(settings, l),
			Version:   currentBuildArgs.Version,
			Commit:    currentBuildArgs.Commit,
			BuildType: currentBuildArgs.BuildType,
		},
		AutoVisibility:  !manualVisibility,
		ShutdownTimeout: daemonShutdownTimeout,
	}, &idaemon.Dependencies{Fs: daemonFs, Log: l})
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "new_runner", err)
		return nil
	}

	sigCtx, cancel := setupShutdownHandler()
	defer cancel()
	l.Info("daemon: starting %s (store %s, config %s)", currentBuildArgs.Version, settings.Store, settings.Dir)
	if err := runner.Start(sigCtx); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "start", err)
		return nil
	}
	fmt.Println("Daemon stopped")
	return nil
}
