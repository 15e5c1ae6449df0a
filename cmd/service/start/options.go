package cmd

import (
	"fmt"

	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/dataspace-ops/emc/pkg/ssl"
)

type Options struct {
	*cli.Options
	Port               int
	SSLCrt             string
	SSLKey             string
	SelfSigned         bool
	CreateEncyptionKey bool
}

func NewOptions(o *cli.Options) *Options {
	return &Options{Options: o}
}

//Validate applies the server section of the configuration to all options not given as flag
func (o *Options) Validate() error {
	cfg, err := o.Config()
	if err != nil {
		return err
	}
	if o.Port == 0 {
		o.Port = cfg.Server.Port
	}
	if o.SSLCrt == "" && o.SSLKey == "" {
		o.SSLCrt, o.SSLKey = cfg.Server.SSLCrtFile, cfg.Server.SSLKeyFile
	}
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("port %d is out of range 1-65535", o.Port)
	}
	if o.SelfSigned {
		if o.SSLCrt == "" || o.SSLKey == "" {
			return fmt.Errorf("self signed certificate requires a certificate and key file path")
		}
		return nil
	}
	return ssl.VerifyKeyPair(o.SSLCrt, o.SSLKey)
}
