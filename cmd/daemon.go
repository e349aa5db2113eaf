package cmd

import (
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
)

func daemonVersion(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon-version", "connect", err)
		return nil
	}
	defer s.Close()
	if _, err := s.client.GetVersion(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon-version", "get_version", err)
		return nil
	}
	v, err := await(s, s.w.versions)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon-version", "await", err)
		return nil
	}
	fmt.Fprintf(out, "aria2 version %s\n", v.Version)
	if len(v.EnabledFeatures) > 0 {
		fmt.Fprintln(out, "Enabled features:")
		for _, f := range v.EnabledFeatures {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	return nil
}

func sessionInfo(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := openSession(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "session", "connect", err)
		return nil
	}
	defer s.Close()
	if _, err := s.client.GetSessionInfo(); err != nil {
		common.PrintRuntimeErr(ctx, "session", "get_session_info", err)
		return nil
	}
	si, err := await(s, s.w.sessions)
	if err != nil {
		common.PrintRuntimeErr(ctx, "session", "await", err)
		return nil
	}
	fmt.Fprintf(out, "Session ID: %s\n", si.SessionID)
	return nil
}
