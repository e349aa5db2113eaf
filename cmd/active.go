package cmd

import (
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

func active(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "active", "connect", err)
		return nil
	}
	defer s.Close()
	if _, err := s.client.TellActive(nil); err != nil {
		common.PrintRuntimeErr(ctx, "active", "tell_active", err)
		return nil
	}
	if _, err := s.client.GetVersion(); err != nil {
		common.PrintRuntimeErr(ctx, "active", "get_version", err)
		return nil
	}
	list, err := collectStatuses(s)
	if err != nil {
		common.PrintRuntimeErr(ctx, "active", "await", err)
		return nil
	}
	fmt.Fprintln(out, formatActive(list))
	return nil
}

func formatActive(list []*ariarpc.TaskStatus) string {
	if len(list) == 0 {
		return "ariactl: no active downloads"
	}
	txt := "Active downloads:"
	txt += "\n\n----------------------------------------------------------------"
	txt += "\n|Num|       GID        |    Size    | Downloaded |  Done  |"
	txt += "\n|---|------------------|------------|------------|--------|"
	for i, ts := range list {
		txt += fmt.Sprintf("\n| %d | %s | %s | %s | %s |",
			i+1,
			common.Beaut(ts.GID, 16),
			common.Beaut(common.FormatSize(ts.TotalLength), 10),
			common.Beaut(common.FormatSize(ts.CompletedLength), 10),
			common.Beaut(percent(ts), 6),
		)
	}
	txt += "\n----------------------------------------------------------------"
	return txt
}
