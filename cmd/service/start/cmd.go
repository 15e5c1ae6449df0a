package cmd

import (
	"github.com/dataspace-ops/emc/internal/cli"
	"github.com/dataspace-ops/emc/pkg/server"
	"github.com/dataspace-ops/emc/pkg/ssl"
	"github.com/spf13/cobra"
)

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the connector orchestration service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			return Run(o)
		},
	}
	cmd.Flags().IntVar(&o.Port, "server-port", 0, "Webserver port (default: server.port of the configuration)")
	cmd.Flags().StringVar(&o.SSLCrt, "server-crt", "", "Path to SSL certificate file")
	cmd.Flags().StringVar(&o.SSLKey, "server-key", "", "Path to SSL key file")
	cmd.Flags().BoolVar(&o.SelfSigned, "self-signed", false, "Create a self signed certificate if certificate and key file do not exist")
	cmd.Flags().BoolVar(&o.CreateEncyptionKey, "create-encryption-key", false, "Create a new encryption key file during startup")
	return cmd
}

func Run(o *Options) error {
	if o.CreateEncyptionKey {
		cfg, err := o.Config()
		if err != nil {
			return err
		}
		keyFile, err := cli.NewEncryptionKey(cfg.DB.Encryption.KeyFile, true)
		if err != nil {
			o.Logger().Warnf("Failed to create encryption key file '%s'", keyFile)
			return err
		}
		o.Logger().Infof("New encryption key file '%s' created", keyFile)
	}
	if o.SelfSigned {
		created, err := ssl.EnsureKeyPair(o.SSLCrt, o.SSLKey, "localhost")
		if err != nil {
			return err
		}
		if created {
			o.Logger().Infof("Self signed certificate '%s' created", o.SSLCrt)
		}
	}

	if err := o.InitApplicationRegistry(true, true); err != nil {
		return err
	}

	//start server process
	srv := &server.Webserver{
		Logger:     o.Logger(),
		Port:       o.Port,
		SSLCrtFile: o.SSLCrt,
		SSLKeyFile: o.SSLKey,
		Handler:    newRouter(o),
	}
	return srv.Start(cli.NewContext()) //blocking call
}
