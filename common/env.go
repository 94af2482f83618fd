// Package common provides shared types and constants used across the warptimer
// client-server communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "WARPTIMER_SOCKET_PATH"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "WARPTIMER_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "WARPTIMER_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WARPTIMER_DEBUG"

	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "WARPTIMER_CONFIG_DIR"

	// StoreEnv selects the storage backend ("file" or "sqlite").
	StoreEnv = "WARPTIMER_STORE"

	// PlayerEnv selects the sound player ("command", "bell" or "none").
	PlayerEnv = "WARPTIMER_PLAYER"

	// SoundCommandEnv overrides the external audio player command.
	SoundCommandEnv = "WARPTIMER_SOUND_COMMAND"

	// SoundDirEnv overrides the directory holding the sound files.
	SoundDirEnv = "WARPTIMER_SOUND_DIR"

	// RPCSecretEnv supplies the bearer secret for the HTTP endpoints instead
	// of the OS keyring.
	RPCSecretEnv = "WARPTIMER_RPC_SECRET"
)
