package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"innbot/internal/platform/config"
	"innbot/internal/platform/health"
)

// version is set at build time via ldflags.
var version = "dev"

type rootOptions struct {
	configFile string
	v          *viper.Viper
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "innbot",
		Short:         "Organization registry lookups by INN or OGRN",
		Long:          `innbot looks up Russian organizations in the DaData party registry by INN (10 or 12 digits) or OGRN (13 digits) and renders a short report.`,
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			health.Version = version
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (YAML); environment variables with the INNBOT_ prefix override it")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = opts.v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newServeCmd(opts), newLookupCmd(opts))
	return cmd
}
