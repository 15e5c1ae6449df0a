package cmd

import (
	"fmt"

	"github.com/dataspace-ops/emc/internal/cli"
)

type Options struct {
	*cli.Options
	SpecFile string
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
