package cmd

import (
	listCmd "github.com/dataspace-ops/emc/cmd/activity/list"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewCommand(
		"activity",
		"Show the activity log",
		"Every create, upgrade, update and delete of a connector is recorded in the activity log, also if it failed")

	cmd.AddCommand(listCmd.NewCmd(listCmd.NewOptions(o)))
	return cmd
}
