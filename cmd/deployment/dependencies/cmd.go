package cmd

import (
	"fmt"
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-dependencies",
		Short: "Update the dependencies of the connector chart",
		Long:  `Fetch the sub-charts of the connector chart into the chart directory. Required once before the first deployment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(o, cmd.OutOrStdout())
		},
	}
	return cmd
}

func Run(o *cli.Options, out io.Writer) error {
	if err := o.InitApplicationRegistry(false, true); err != nil {
		return err
	}
	if err := o.Registry.Driver().DependencyUpdate(cli.NewContext()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "Chart dependencies updated")
	return err
}
