package cmd

import (
	"fmt"

	"github.com/dataspace-ops/emc/internal/cli"
)

type Options struct {
	*cli.Options
	SpecFile string
	Version  string
}

func NewOptions(o *cli.Options) *Options {
	return &Options{Options: o}
}

func (o *Options) Validate() error {
	if o.SpecFile == "" && o.Version == "" {
		return fmt.Errorf("either a connector specification file or a version is required")
	}
	return nil
}
