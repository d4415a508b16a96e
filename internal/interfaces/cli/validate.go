package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configurations",
		Long:  "Validate hosts, stacks, secrets and DNS providers, including cross references and hostname conflicts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(ctx, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runValidate(ctx *Context, out io.Writer) error {
	if _, _, err := ctx.load(commandContext("validate")); err != nil {
		return err
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}
