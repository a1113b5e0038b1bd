package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "apistore",
		Short:         "Cookie backed key/value storage for API clients",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "configuration file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	// errors only happen for unknown flag names
	_ = opts.v.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = opts.v.BindPFlag("log_format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(newServeCmd(opts), newDecodeCmd())
	return cmd
}
