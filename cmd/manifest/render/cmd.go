package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/spf13/cobra"
)

type Options struct {
	*cli.Options
	SpecFile string
	Write    bool
}

func NewOptions(o *cli.Options) *Options {
	return &Options{Options: o}
}

func (o *Options) Validate() error {
	if o.SpecFile == "" {
		return fmt.Errorf("connector specification file is missing")
	}
	return nil
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the manifest of a connector",
		Long:  `Print the values manifest of a connector specification. With --write the manifest is stored in the work directory instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return Run(o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.SpecFile, "file", "f", "", "Connector specification file (YAML or JSON, '-' reads from stdin)")
	cmd.Flags().BoolVar(&o.Write, "write", false, "Write the manifest into the work directory and print its path")
	return cmd
}

func Run(o *Options, in io.Reader, out io.Writer) error {
	spec, err := cli.ReadConnectorSpec(o.SpecFile, in)
	if err != nil {
		return err
	}
	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}
	if o.Write {
		fileName, err := o.Registry.Orchestrator().RenderManifest(spec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, filepath.Join(o.Registry.Config().ManifestConfig().WorkDir, fileName))
		return err
	}
	data, err := o.Registry.Orchestrator().PreviewManifest(spec)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
