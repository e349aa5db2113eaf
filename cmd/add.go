package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/pkg/ariarpc"
)

var addFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "dir, d",
		Usage: "directory the daemon saves the file to",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "file name to save as",
	},
	cli.StringFlag{
		Name:  "proxy, x",
		Usage: "proxy the daemon uses for this download (aria2 all-proxy)",
	},
	cli.IntFlag{
		Name:  "position, p",
		Usage: "position in the download queue (default: end of queue)",
		Value: -1,
	},
	cli.StringFlag{
		Name:  "id",
		Usage: "correlation id to send the request with (default: generated)",
	},
}

func add(ctx *cli.Context) error {
	uris := []string(ctx.Args())
	if len(uris) == 0 {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no uri provided"),
		)
	} else if uris[0] == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "connect", err)
		return nil
	}
	defer s.Close()

	var position *int
	if p := ctx.Int("position"); p >= 0 {
		position = &p
	}
	var callOpts []ariarpc.CallOption
	if id := ctx.String("id"); id != "" {
		callOpts = append(callOpts, ariarpc.WithID(parseID(id)))
	}
	opts := &ariarpc.Options{
		Dir:   ctx.String("dir"),
		Out:   ctx.String("out"),
		Proxy: ctx.String("proxy"),
	}
	id, err := s.client.AddURI(uris, opts, position, callOpts...)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "add_uri", err)
		return nil
	}
	c, err := await(s, s.w.created)
	if err != nil {
		common.PrintRuntimeErr(ctx, "add", "await", err)
		return nil
	}
	if c.id != id {
		s.log.Warning("gid %s answers request %s, expected %s", c.gid, c.id, id)
	}
	fmt.Fprintf(out, "Download queued with GID %s\n", c.gid)

	store, err := s.openHistory()
	if err != nil {
		s.log.Warning("history unavailable: %v", err)
		return nil
	}
	defer store.Close()
	if _, err := store.RecordCreated(context.Background(), c.gid); err != nil {
		s.log.Warning("%v", err)
	}
	return nil
}
