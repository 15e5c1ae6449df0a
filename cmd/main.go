package main

import (
	"os"

	"github.com/dataspace-ops/emc/internal/cli"
)

func main() {
	o := &cli.Options{}
	cmd := newCmd(o)
	if err := cmd.Execute(); err != nil {
		_ = o.Close()
		os.Exit(1)
	}
}
