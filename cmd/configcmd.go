package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/internal/config"
)

var configInitFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "force, f",
		Usage: "overwrite an existing config file",
	},
}

func configInit(ctx *cli.Context) error {
	path, err := configPath(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "config", "path", err)
		return nil
	}
	exists, err := afero.Exists(configFs, path)
	if err != nil {
		common.PrintRuntimeErr(ctx, "config", "stat", err)
		return nil
	}
	if exists && !ctx.Bool("force") {
		common.PrintRuntimeErr(ctx, "config", "init",
			fmt.Errorf("%s already exists, pass --force to overwrite it", path))
		return nil
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "config", "load", err)
		return nil
	}
	if err := config.Save(configFs, path, cfg); err != nil {
		common.PrintRuntimeErr(ctx, "config", "save", err)
		return nil
	}
	fmt.Fprintf(out, "ariactl: wrote %s\n", path)
	return nil
}
