package cmd

import (
	"fmt"
	"io"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

type Options struct {
	*cli.Options
	Limit int
}

func NewOptions(o *cli.Options) *Options {
	return &Options{Options: o}
}

func (o *Options) Validate() error {
	if o.Limit <= 0 {
		return fmt.Errorf("limit has to be > 0 (was %d)", o.Limit)
	}
	return nil
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return Run(o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&o.Limit, "limit", "l", 20, "Maximum number of activities")
	return cmd
}

func Run(o *Options, out io.Writer) error {
	if err := o.InitApplicationRegistry(true, false); err != nil {
		return err
	}
	activities, err := o.Registry.Inventory().RecentActivity(o.Limit)
	if err != nil {
		return err
	}

	formatter, err := o.NewOutputFormatter()
	if err != nil {
		return err
	}
	if err := formatter.Header("Created", "Action", "Connector", "Status", "Created By", "Details"); err != nil {
		return err
	}
	for _, activity := range activities {
		if err := formatter.AddRow(activity.Created, activity.Action, activity.ConnectorName, activity.Status, activity.CreatedBy, activity.Details); err != nil {
			return err
		}
	}
	return formatter.Output(out)
}
