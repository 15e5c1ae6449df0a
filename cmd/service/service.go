package cmd

import (
	startCmd "github.com/dataspace-ops/emc/cmd/service/start"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewCommand(
		"service",
		"Manage the connector orchestration service",
		"Administrative CLI tool for the REST service which deploys and monitors connectors")

	//register start commands
	cmd.AddCommand(startCmd.NewCmd(startCmd.NewOptions(o)))
	return cmd
}
