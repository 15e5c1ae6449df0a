package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health ID|NAME",
		Short: "Probe a connector",
		Long:  `Probe liveness and readiness of a connector without changing its stored status.`,
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
	result := o.Registry.Reconciler().HealthCheck(cli.NewContext(), connector.URL)

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("Name", "URL", "Liveness", "Readiness", "Healthy"); err != nil {
		return err
	}
	if err := formatter.AddRow(connector.Name, result.URL, result.Liveness, result.Readiness, result.Healthy); err != nil {
		return err
	}
	return formatter.Output(out)
}
