// Package config loads the daemon configuration from config.yaml in the
// configuration directory. Environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/internal/clock"
	"github.com/warpdl/warptimer/internal/engine"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the config directory.
const FileName = "config.yaml"

// Storage backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Sound players.
const (
	PlayerCommand = "command"
	PlayerBell    = "bell"
	PlayerNone    = "none"
)

var (
	ErrInvalidStore  = errors.New("config: store must be \"file\" or \"sqlite\"")
	ErrInvalidPlayer = errors.New("config: player must be \"command\", \"bell\" or \"none\"")
	ErrInvalidPort   = errors.New("config: tcp port out of range")
)

// Config is the daemon configuration.
type Config struct {
	// Dir is the configuration directory. It also holds the timer store.
	Dir string `yaml:"-"`

	FastInterval time.Duration `yaml:"fast_interval"`
	SlowInterval time.Duration `yaml:"slow_interval"`
	PingInterval time.Duration `yaml:"ping_interval"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`

	Store        string `yaml:"store"`
	Player       string `yaml:"player"`
	SoundCommand string `yaml:"sound_command"`
	SoundDir     string `yaml:"sound_dir"`
	TCPPort      int    `yaml:"tcp_port"`
	LogFile      string `yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default(dir string) *Config {
	return &Config{
		Dir:          dir,
		FastInterval: clock.DefaultFastInterval,
		SlowInterval: clock.DefaultSlowInterval,
		PingInterval: engine.DefaultPingInterval,
		PingTimeout:  engine.DefaultPingTimeout,
		Store:        StoreFile,
		Player:       PlayerCommand,
		SoundDir:     filepath.Join(dir, "sounds"),
		TCPPort:      common.DefaultTCPPort,
		LogFile:      filepath.Join(dir, "daemon.log"),
	}
}

// Dir resolves the configuration directory: the override variable if set,
// otherwise warptimer under the user config directory.
func Dir(getenv func(string) string) (string, error) {
	if dir := getenv(common.ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(base, "warptimer"), nil
}

var userConfigDir = os.UserConfigDir

// Load reads dir/config.yaml from fs over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(fs afero.Fs, dir string, getenv func(string) string) (*Config, error) {
	cfg := Default(dir)
	data, err := afero.ReadFile(fs, filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", FileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", FileName, err)
	}
	cfg.Dir = dir
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(common.StoreEnv); v != "" {
		c.Store = v
	}
	if v := getenv(common.PlayerEnv); v != "" {
		c.Player = v
	}
	if v := getenv(common.SoundCommandEnv); v != "" {
		c.SoundCommand = v
	}
	if v := getenv(common.SoundDirEnv); v != "" {
		c.SoundDir = v
	}
	if v := getenv(common.TCPPortEnv); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", common.TCPPortEnv, err)
		}
		c.TCPPort = port
	}
	return nil
}

// Validate checks enumerated fields and fills zero durations with defaults.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}
	switch c.Player {
	case PlayerCommand, PlayerBell, PlayerNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPlayer, c.Player)
	}
	// the HTTP endpoints use the next port
	if c.TCPPort < 1 || c.TCPPort > 65534 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.TCPPort)
	}
	if c.FastInterval <= 0 {
		c.FastInterval = clock.DefaultFastInterval
	}
	if c.SlowInterval <= 0 {
		c.SlowInterval = clock.DefaultSlowInterval
	}
	if c.PingInterval <= 0 {
		c.PingInterval = engine.DefaultPingInterval
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = engine.DefaultPingTimeout
	}
	return nil
}

// Save writes c to dir/config.yaml.
func (c *Config) Save(fs afero.Fs) error {
	if err := fs.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return afero.WriteFile(fs, filepath.Join(c.Dir, FileName), data, 0644)
}
