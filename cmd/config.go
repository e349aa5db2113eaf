package cmd

import "time"

const (
	DEF_TIMEOUT       = time.Second * 10
	DEF_POLL_INTERVAL = time.Second
	DEF_HISTORY_LIMIT = 20
)

const DESCRIPTION = `
ariactl talks to a running aria2 daemon over its JSON-RPC
websocket interface. It can queue new downloads, inspect
running ones, follow their progress live and keep a local
history of what it has seen.
`

const (
	DaemonVersionDescription = `The daemon-version command asks the daemon for its
version and the features it was built with.

Example:
        ariactl daemon-version

`
	SessionDescription = `The session command prints the id of the daemon's
current session.

Example:
        ariactl session

`
	AddDescription = `The add command queues a new download. Every uri must
point at the same file; aria2 uses them as mirrors.

Example:
        ariactl add https://domain.com/file.zip
        ariactl add --dir /tmp --out f.zip https://a/f.zip https://b/f.zip

`
	StatusDescription = `The status command shows the progress of one download
by its gid.

Example:
        ariactl status 2089b05ecca3d829

`
	ActiveDescription = `The active command lists every download the daemon is
currently working on.

Example:
        ariactl active

`
	WatchDescription = `The watch command follows all active downloads with
live progress bars until interrupted. With --record every
observed status is also stored in the local history.

Example:
        ariactl watch --record

`
	HistoryDescription = `The history command lists task events recorded by
"ariactl add" and "ariactl watch --record", newest first.

With --latest only the newest recorded status of --gid is
shown, in the same layout as "ariactl status".

Example:
        ariactl history --gid 2089b05ecca3d829 --limit 5
        ariactl history --gid 2089b05ecca3d829 --latest

`
	ConfigDescription = `The config command manages config.toml. "init" writes
the current settings, including the global flags given on
the command line, to the config file.

Example:
        ariactl --port 6801 --secure config init
        ariactl --config ./ariactl.toml config init --force

`
	SecretDescription = `The secret command stores the daemon's --rpc-secret in
the operating system keyring so that it does not have to
be passed on every invocation.

Example:
        ariactl secret set <secret>
        ariactl secret delete

`
)

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{if .VisibleFlags}}

Global Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
