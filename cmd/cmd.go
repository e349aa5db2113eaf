package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "ariactl",
		HelpName:              "ariactl",
		Usage:                 "A command line client for the aria2 download daemon.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "ariactl [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "daemon-version",
				Aliases:            []string{"dv"},
				Usage:              "shows the daemon's version and features",
				Action:             daemonVersion,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        DaemonVersionDescription,
			},
			{
				Name:               "session",
				Usage:              "shows the daemon's session id",
				Action:             sessionInfo,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        SessionDescription,
			},
			{
				Name:                   "add",
				Aliases:                []string{"a"},
				Usage:                  "queues a new download",
				UsageText:              "[command options] <uri>...",
				Action:                 add,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            AddDescription,
				Flags:                  addFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "shows the status of a download",
				UsageText:          "[command options] <gid>",
				Action:             status,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
				Flags:              statusFlags,
			},
			{
				Name:               "active",
				Aliases:            []string{"ls"},
				Usage:              "lists active downloads",
				Action:             active,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ActiveDescription,
			},
			{
				Name:                   "watch",
				Aliases:                []string{"w"},
				Usage:                  "follows active downloads live",
				Action:                 watch,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            WatchDescription,
				Flags:                  watchFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "history",
				Usage:              "lists recorded task events",
				Action:             showHistory,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        HistoryDescription,
				Flags:              historyFlags,
			},
			{
				Name:        "config",
				Usage:       "manages the config file",
				Description: ConfigDescription,
				Subcommands: []cli.Command{
					{
						Name:   "init",
						Usage:  "writes the current settings to the config file",
						Action: configInit,
						Flags:  configInitFlags,
					},
				},
			},
			{
				Name:        "secret",
				Usage:       "manages the RPC secret in the keyring",
				Description: SecretDescription,
				Subcommands: []cli.Command{
					{
						Name:      "set",
						Usage:     "stores the secret",
						UsageText: "<secret>",
						Action:    secretSet,
					},
					{
						Name:   "delete",
						Usage:  "removes the stored secret",
						Action: secretDelete,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints the installed version of ariactl",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
