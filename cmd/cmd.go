package main

import (
	activityCmd "github.com/dataspace-ops/emc/cmd/activity"
	connectorCmd "github.com/dataspace-ops/emc/cmd/connector"
	deploymentCmd "github.com/dataspace-ops/emc/cmd/deployment"
	manifestCmd "github.com/dataspace-ops/emc/cmd/manifest"
	serviceCmd "github.com/dataspace-ops/emc/cmd/service"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func newCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewRootCommand(o,
		"emc",
		"Connector deployment orchestrator",
		`Deploys dataspace connectors with the deployment tool, keeps a record of every connector and monitors their health.
* Run 'emc service start' to offer the REST API
* Use the 'connector' commands to manage connectors from the shell
`)

	cmd.AddCommand(serviceCmd.NewCmd(o))
	cmd.AddCommand(connectorCmd.NewCmd(o))
	cmd.AddCommand(deploymentCmd.NewCmd(o))
	cmd.AddCommand(activityCmd.NewCmd(o))
	cmd.AddCommand(manifestCmd.NewCmd(o))
	return cmd
}
