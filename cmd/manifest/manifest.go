package cmd

import (
	renderCmd "github.com/dataspace-ops/emc/cmd/manifest/render"
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

func NewCmd(o *cli.Options) *cobra.Command {
	cmd := cli.NewCommand(
		"manifest",
		"Render connector manifests",
		"Render the values manifest of a connector specification without deploying it")

	cmd.AddCommand(renderCmd.NewCmd(renderCmd.NewOptions(o)))
	return cmd
}
