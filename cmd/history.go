package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/internal/history"
)

var historyFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "gid, g",
		Usage: "only show events of this gid",
	},
	cli.IntFlag{
		Name:  "limit, l",
		Usage: "maximum number of events to show (0 for all)",
		Value: DEF_HISTORY_LIMIT,
	},
	cli.BoolFlag{
		Name:  "latest",
		Usage: "only show the newest recorded status of --gid",
	},
}

func showHistory(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	latest := ctx.Bool("latest")
	if latest && ctx.String("gid") == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("--latest needs --gid"),
		)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "history", "load_config", err)
		return nil
	}
	store, err := openHistory(cfg)
	if err != nil {
		common.PrintRuntimeErr(ctx, "history", "open", err)
		return nil
	}
	defer store.Close()
	if latest {
		return showLatest(ctx, store, ctx.String("gid"))
	}
	events, err := store.List(context.Background(), history.Filter{
		GID:   ctx.String("gid"),
		Limit: ctx.Int("limit"),
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "history", "list", err)
		return nil
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "ariactl: no events recorded")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintln(out, formatEvent(&ev))
	}
	return nil
}

func showLatest(ctx *cli.Context, store *history.Store, gid string) error {
	ev, err := store.Latest(context.Background(), gid)
	if errors.Is(err, history.ErrNotFound) {
		fmt.Fprintf(out, "ariactl: no events recorded for %s\n", gid)
		return nil
	}
	if err != nil {
		common.PrintRuntimeErr(ctx, "history", "latest", err)
		return nil
	}
	printStatus(ev.TaskStatus())
	fmt.Fprintf(out, "Recorded\t: %s %s\n", ev.Kind, humanize.Time(ev.At))
	return nil
}

func formatEvent(ev *history.Event) string {
	line := fmt.Sprintf("%-16s %-8s %s", ev.GID, ev.Kind, humanize.Time(ev.At))
	if ev.Status != "" {
		line += " " + string(ev.Status)
	}
	if ev.TotalLength != nil || ev.CompletedLength != nil {
		line += fmt.Sprintf(" %s/%s",
			common.FormatSize(ev.CompletedLength),
			common.FormatSize(ev.TotalLength),
		)
	}
	return line
}
