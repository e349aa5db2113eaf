package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

var statusFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "keys, k",
		Usage: "comma separated status keys to request (default: gid,status,totalLength,completedLength)",
	},
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// withLengthKeys adds the keys status prints to a caller supplied key set.
// An empty set is left alone so the default keys apply.
func withLengthKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range []string{"gid", "totalLength", "completedLength"} {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func status(ctx *cli.Context) error {
	gid := ctx.Args().First()
	if gid == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no gid provided"),
		)
	} else if gid == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "connect", err)
		return nil
	}
	defer s.Close()
	if _, err := s.client.TellStatus(gid, withLengthKeys(splitKeys(ctx.String("keys")))); err != nil {
		common.PrintRuntimeErr(ctx, "status", "tell_status", err)
		return nil
	}
	ts, err := awaitMatch(s, s.w.statuses, func(ts *ariarpc.TaskStatus) bool {
		return ts.GID == gid && isSnapshot(ts)
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "await", err)
		return nil
	}
	printStatus(ts)
	return nil
}

func printStatus(ts *ariarpc.TaskStatus) {
	st := string(ts.Status)
	if st == "" {
		st = "unknown"
	}
	fmt.Fprintf(out, `
Download Status
GID`+"\t\t"+`: %s
Status`+"\t\t"+`: %s
Size`+"\t\t"+`: %s
Downloaded`+"\t"+`: %s (%s)
`,
		ts.GID,
		st,
		common.FormatSize(ts.TotalLength),
		common.FormatSize(ts.CompletedLength),
		percent(ts),
	)
}
