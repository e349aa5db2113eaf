package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/internal/config"
	"github.com/warpdl/ariarpc/pkg/logger"
)

var (
	// out receives command output.
	out io.Writer = os.Stdout
	// logOutput receives console log lines.
	logOutput io.Writer = os.Stderr
	configFs            = afero.NewOsFs()
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "host",
		Usage: "aria2 daemon host (default: 127.0.0.1)",
	},
	cli.IntFlag{
		Name:  "port",
		Usage: "aria2 RPC port (default: 6800)",
	},
	cli.StringFlag{
		Name:  "path",
		Usage: "aria2 RPC path (default: /jsonrpc)",
	},
	cli.BoolFlag{
		Name:  "secure",
		Usage: "connect with wss:// instead of ws://",
	},
	cli.StringFlag{
		Name:  "secret",
		Usage: "the daemon's --rpc-secret (default: from config or keyring)",
	},
	cli.StringFlag{
		Name:  "proxy",
		Usage: "http, https or socks5 proxy URL for the RPC connection",
	},
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to config.toml",
	},
	cli.DurationFlag{
		Name:  "timeout, t",
		Usage: "how long to wait for the daemon",
		Value: DEF_TIMEOUT,
	},
	cli.BoolFlag{
		Name:  "debug",
		Usage: "log every RPC frame",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "also write log lines to this file",
	},
}

// configPath returns --config, or the default config location.
func configPath(ctx *cli.Context) (string, error) {
	if path := ctx.GlobalString("config"); path != "" {
		return path, nil
	}
	return config.Path()
}

// loadConfig reads config.toml and applies the global flags on top.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path, err := configPath(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configFs, path)
	if err != nil {
		return nil, err
	}
	if ctx.GlobalIsSet("host") {
		cfg.RPC.Host = ctx.GlobalString("host")
	}
	if ctx.GlobalIsSet("port") {
		cfg.RPC.Port = ctx.GlobalInt("port")
	}
	if ctx.GlobalIsSet("path") {
		cfg.RPC.Path = ctx.GlobalString("path")
	}
	if ctx.GlobalIsSet("secure") {
		cfg.RPC.Secure = ctx.GlobalBool("secure")
	}
	if ctx.GlobalIsSet("secret") {
		cfg.RPC.Secret = ctx.GlobalString("secret")
	}
	if ctx.GlobalIsSet("proxy") {
		cfg.RPC.Proxy = ctx.GlobalString("proxy")
	}
	if ctx.GlobalIsSet("debug") {
		cfg.Log.Debug = ctx.GlobalBool("debug")
	}
	if ctx.GlobalIsSet("log-file") {
		cfg.Log.File = ctx.GlobalString("log-file")
	}
	return cfg, nil
}

// fileLogger is a StandardLogger that owns its log file.
type fileLogger struct {
	*logger.StandardLogger
	f *os.File
}

func (l *fileLogger) Close() error {
	return l.f.Close()
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	console := logger.NewStandardLogger(log.New(logOutput, "ariactl: ", 0))
	console.SetDebug(cfg.Log.Debug)
	if cfg.Log.File == "" {
		return console, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	fl := logger.NewStandardLogger(log.New(f, "", log.LstdFlags))
	fl.SetDebug(cfg.Log.Debug)
	return logger.NewMultiLogger(console, &fileLogger{StandardLogger: fl, f: f}), nil
}
