package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get ID|NAME",
		Short: "Show a connector",
		Long:  `Show a connector including its health and the URLs of its management resources.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(o, args[0], cmd.OutOrStdout())
		},
	}
	return cmd
}

func Run(o *cli.Options, ref string, out io.Writer) error {
	if err := o.InitApplicationRegistry(true, false); err != nil {
		return err
	}
	connector, err := cli.ResolveConnector(o.Registry.Inventory(), ref)
	if err != nil {
		return err
	}
	view, err := o.Registry.Reconciler().Reconcile(cli.NewContext(), connector.ID)
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("ID", "Name", "BPN", "Version", "Namespace", "Status", "Health", "Resources"); err != nil {
		return err
	}
	if err := formatter.AddRow(view.ID, view.Name, view.BPN, view.Version, view.Namespace, view.Status, view.Health, view.Resources); err != nil {
		return err
	}
	return formatter.Output(out)
}
