package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Deploy a new connector",
		Long:  `Render the manifest of a connector specification, install the release and store the connector.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return Run(o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.SpecFile, "file", "f", "", "Connector specification file (YAML or JSON, '-' reads from stdin)")
	return cmd
}

func Run(o *Options, in io.Reader, out io.Writer) error {
	spec, err := cli.ReadConnectorSpec(o.SpecFile, in)
	if err != nil {
		return err
	}
	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}
	connector, err := o.Registry.Orchestrator().Create(cli.NewContext(), spec, o.User())
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("ID", "Name", "Version", "Status", "Control Plane Host", "Data Plane Host"); err != nil {
		return err
	}
	if err := formatter.AddRow(connector.ID, connector.Name, connector.Version, connector.Status, connector.CPHostname, connector.DPHostname); err != nil {
		return err
	}
	return formatter.Output(out)
}
