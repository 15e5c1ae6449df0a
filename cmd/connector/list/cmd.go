package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connectors",
		Long:  `List all connectors with their current health. Every connector is probed and its stored status refreshed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(o, cmd.OutOrStdout())
		},
	}
	return cmd
}

func Run(o *cli.Options, out io.Writer) error {
	if err := o.InitApplicationRegistry(true, false); err != nil {
		return err
	}
	views, err := o.Registry.Reconciler().ReconcileList(cli.NewContext())
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("ID", "Name", "Version", "Status", "URL", "Created By"); err != nil {
		return err
	}
	for _, view := range views {
		if err := formatter.AddRow(view.ID, view.Name, view.Version, view.Status, view.URL, view.CreatedBy); err != nil {
			return err
		}
	}
	return formatter.Output(out)
}
