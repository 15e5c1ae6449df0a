package cmd

import (
	dependenciesCmd "github.com/dataspace-ops/emc/cmd/deployment/dependencies"
	listCmd "github.com/dataspace-ops/emc/cmd/deployment/list"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewCommand(
		"deployment",
		"Inspect releases of the deployment tool",
		"Show the releases known to the deployment tool, independent of the stored connector records")

	cmd.AddCommand(listCmd.NewCmd(listCmd.NewOptions(o)))
	cmd.AddCommand(dependenciesCmd.NewCmd(o))
	return cmd
}
