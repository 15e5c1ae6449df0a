package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/spf13/cobra"
)

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade ID|NAME",
		Short: "Upgrade a connector",
		Long: `Upgrade the release of a connector.
Fields missing in the given specification keep their stored values. The version flag overrides the version of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return Run(o, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.SpecFile, "file", "f", "", "Connector specification file (YAML or JSON, '-' reads from stdin)")
	cmd.Flags().StringVar(&o.Version, "version", "", "Target version of the connector")
	return cmd
}

func Run(o *Options, ref string, in io.Reader, out io.Writer) error {
	spec := &model.ConnectorSpec{}
	if o.SpecFile != "" {
		var err error
		if spec, err = cli.ReadConnectorSpec(o.SpecFile, in); err != nil {
			return err
		}
	}
	if o.Version != "" {
		spec.Version = o.Version
	}
	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}
	existing, err := cli.ResolveConnector(o.Registry.Inventory(), ref)
	if err != nil {
		return err
	}
	connector, err := o.Registry.Orchestrator().Upgrade(cli.NewContext(), existing.ID, spec, o.User())
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("ID", "Name", "Previous Version", "Version", "Status"); err != nil {
		return err
	}
	if err := formatter.AddRow(connector.ID, connector.Name, existing.Version, connector.Version, connector.Status); err != nil {
		return err
	}
	return formatter.Output(out)
}
