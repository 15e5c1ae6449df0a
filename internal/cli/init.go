package cli

import (
	"os"
	"strings"

	"github.com/dataspace-ops/emc/pkg/app"
	file "github.com/dataspace-ops/emc/pkg/files"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "configs/emc.yaml"

func NewRootCommand(o *Options, name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: shortDesc,
		Long:  longDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			//validate given user input
			if err := o.Validate(); err != nil {
				return err
			}
			o.ConfigFile = configFile(o.ConfigFile)
			_, err := o.Config()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			//close db connection after cmd (or sub-cmd) was executed
			return o.Close()
		},
		SilenceErrors: false,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "",
		"Path to the configuration file (default: $"+app.EnvConfigFile+" or "+defaultConfigFile+")")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "Show detailed information about the executed command actions")
	cmd.PersistentFlags().StringVarP(&o.OutputFormat, "output", "o", "table",
		"Output format, one of '"+strings.Join(SupportedOutputFormats, "', '")+"'")
	cmd.PersistentFlags().BoolP("help", "h", false, "Command help")
	return cmd
}

//configFile resolves the configuration file: flag, env var, default location (if it exists), or none
func configFile(flag string) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(app.EnvConfigFile)); env != "" {
		return env
	}
	if file.Exists(defaultConfigFile) {
		return defaultConfigFile
	}
	return ""
}

//NewCommand creates a sub command which groups other commands
func NewCommand(name, shortDesc, longDesc string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: shortDesc,
		Long:  longDesc,
	}
}
