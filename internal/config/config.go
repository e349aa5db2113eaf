// Package config loads ariactl settings from config.toml and the
// environment, and keeps the daemon's RPC secret in the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/warpdl/ariarpc/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

const (
	fileName    = "config.toml"
	historyFile = "history.db"
)

var (
	ErrInvalidPort = errors.New("rpc.port must be between 1 and 65535")
	ErrInvalidTTL  = errors.New("rpc.pending_ttl must not be negative")
	ErrNoConfigDir = errors.New("unable to determine the user config directory")

	userConfigDir = os.UserConfigDir
	lookupEnv     = os.LookupEnv
)

// Duration is a time.Duration written as a string ("30s") in config.toml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// RPCConfig describes how to reach the daemon.
type RPCConfig struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	Path       string   `toml:"path"`
	Secure     bool     `toml:"secure"`
	Secret     string   `toml:"secret"`
	Proxy      string   `toml:"proxy"`
	PendingTTL Duration `toml:"pending_ttl"`
}

// HistoryConfig locates the task event database.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds logging knobs.
type LogConfig struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

type Config struct {
	RPC     RPCConfig     `toml:"rpc"`
	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		RPC: RPCConfig{
			Host: ariarpc.DefaultHost,
			Port: ariarpc.DefaultPort,
			Path: ariarpc.DefaultPath,
		},
	}
}

// Dir returns the ariarpc config directory.
func Dir() (string, error) {
	base, err := userConfigDir()
	if err != nil || base == "" {
		return "", ErrNoConfigDir
	}
	return filepath.Join(base, common.AppName), nil
}

// Path returns the config file location: $ARIARPC_CONFIG when set, else
// config.toml in Dir.
func Path() (string, error) {
	if p, ok := lookupEnv(common.ConfigPathEnv); ok && p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file at path from fs and applies environment
// overrides on top. A missing file yields the defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v, ok := lookupEnv(common.HostEnv); ok && v != "" {
		cfg.RPC.Host = v
	}
	if v, ok := lookupEnv(common.PortEnv); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", common.PortEnv, err)
		}
		cfg.RPC.Port = port
	}
	if v, ok := lookupEnv(common.SecretEnv); ok {
		cfg.RPC.Secret = v
	}
	if v, ok := lookupEnv(common.DebugEnv); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", common.DebugEnv, err)
		}
		cfg.Log.Debug = debug
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.RPC.Port < 1 || cfg.RPC.Port > 65535 {
		return ErrInvalidPort
	}
	if cfg.RPC.PendingTTL.Duration < 0 {
		return ErrInvalidTTL
	}
	if cfg.RPC.Proxy != "" {
		if _, err := ariarpc.ParseProxyURL(cfg.RPC.Proxy); err != nil {
			return fmt.Errorf("rpc.proxy: %w", err)
		}
	}
	if cfg.RPC.Host == "" {
		cfg.RPC.Host = ariarpc.DefaultHost
	}
	if cfg.RPC.Path == "" {
		cfg.RPC.Path = ariarpc.DefaultPath
	}
	return nil
}

// Endpoint returns the daemon's websocket URL.
func (cfg *Config) Endpoint() string {
	return ariarpc.Endpoint(cfg.RPC.Secure, cfg.RPC.Host, uint16(cfg.RPC.Port), cfg.RPC.Path)
}

// HistoryPath returns the configured history database, defaulting to
// history.db in Dir.
func (cfg *Config) HistoryPath() (string, error) {
	if cfg.History.Path != "" {
		return cfg.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFile), nil
}

// Save writes cfg to path on fs, creating the parent directory.
func Save(fs afero.Fs, path string, cfg *Config) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
