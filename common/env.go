// Package common provides shared constants used by the ariactl command line
// tool and its internal packages.
package common

// Environment variable names for configuration.
const (
	// ConfigPathEnv overrides the location of config.toml.
	ConfigPathEnv = "ARIARPC_CONFIG"

	// HostEnv is the environment variable for the daemon host.
	HostEnv = "ARIARPC_HOST"

	// PortEnv is the environment variable for the daemon's RPC port.
	PortEnv = "ARIARPC_PORT"

	// SecretEnv is the environment variable for the daemon's RPC secret.
	SecretEnv = "ARIARPC_SECRET"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "ARIARPC_DEBUG"
)
