package cmd

import (
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

type Options struct {
	*cli.Options
	Namespace string
}

func NewOptions(o *cli.Options) *Options {
	return &Options{Options: o}
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.Namespace, "namespace", "n", "", "Namespace of the releases (default: deployment.namespace of the configuration)")
	return cmd
}

func Run(o *Options, out io.Writer) error {
	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}
	releases, err := o.Registry.Driver().List(cli.NewContext(), o.Namespace)
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("Name", "Namespace", "Revision", "Updated", "Status", "Chart", "App Version"); err != nil {
		return err
	}
	for _, rel := range releases {
		if err := formatter.AddRow(rel.Name, rel.Namespace, rel.Revision, rel.Updated, rel.Status, rel.Chart, rel.AppVersion); err != nil {
			return err
		}
	}
	return formatter.Output(out)
}
