package cmd

import (
	"fmt"
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/dataspace-ops/emc/pkg/repository"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID|NAME",
		Short: "Remove a connector",
		Long:  `Uninstall the release of a connector and remove its record. Removing an unknown connector is not an error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(o, args[0], cmd.OutOrStdout())
		},
	}
	return cmd
}

func Run(o *cli.Options, ref string, out io.Writer) error {
	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}
	id := ref
	connector, err := cli.ResolveConnector(o.Registry.Inventory(), ref)
	if err == nil {
		id = connector.ID
	} else if !repository.IsNotFoundError(err) {
		return err
	}
	deleted, err := o.Registry.Orchestrator().Delete(cli.NewContext(), id, o.User())
	if err != nil {
		return err
	}
	if deleted {
		_, err = fmt.Fprintf(out, "Connector '%s' deleted\n", ref)
	} else {
		_, err = fmt.Fprintf(out, "Connector '%s' not found\n", ref)
	}
	return err
}
