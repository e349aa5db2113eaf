package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/ariarpc/cmd/common"
	"github.com/warpdl/ariarpc/internal/config"
)

func secretSet(ctx *cli.Context) error {
	secret := ctx.Args().First()
	if secret == "" {
		return common.PrintErrWithCmdHelp(
			ctx,
			errors.New("no secret provided"),
		)
	}
	if err := config.NewSecretStore().Set(secret); err != nil {
		common.PrintRuntimeErr(ctx, "secret", "set", err)
		return nil
	}
	fmt.Fprintln(out, "ariactl: secret stored in the keyring")
	return nil
}

func secretDelete(ctx *cli.Context) error {
	if err := config.NewSecretStore().Delete(); err != nil {
		common.PrintRuntimeErr(ctx, "secret", "delete", err)
		return nil
	}
	fmt.Fprintln(out, "ariactl: secret removed from the keyring")
	return nil
}
