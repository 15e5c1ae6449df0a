package cmd

import (
	createCmd "github.com/dataspace-ops/emc/cmd/connector/create"
	deleteCmd "github.com/dataspace-ops/emc/cmd/connector/delete"
	getCmd "github.com/dataspace-ops/emc/cmd/connector/get"
	healthCmd "github.com/dataspace-ops/emc/cmd/connector/health"
	listCmd "github.com/dataspace-ops/emc/cmd/connector/list"
	upgradeCmd "github.com/dataspace-ops/emc/cmd/connector/upgrade"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewCommand(
		"connector",
		"Manage connectors",
		`Deploy, upgrade, inspect and remove dataspace connectors.
* Connectors can be referenced by their ID or by their name
* Connector specifications are YAML or JSON files
`)

	cmd.AddCommand(listCmd.NewCmd(o))
	cmd.AddCommand(getCmd.NewCmd(o))
	cmd.AddCommand(createCmd.NewCmd(createCmd.NewOptions(o)))
	cmd.AddCommand(upgradeCmd.NewCmd(upgradeCmd.NewOptions(o)))
	cmd.AddCommand(deleteCmd.NewCmd(o))
	cmd.AddCommand(healthCmd.NewCmd(o))
	return cmd
}
