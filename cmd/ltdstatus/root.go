package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonwraymond/ltdstatus/config"
)

// flagKeys maps CLI flags to config keys.
var flagKeys = map[string]string{
	"base-url":         "base_url",
	"listen-addr":      "listen_addr",
	"log-level":        "log_level",
	"max-in-flight":    "max_in_flight",
	"max-products":     "max_products",
	"max-editions":     "max_editions",
	"probe-timeout":    "probe_timeout",
	"tracing-exporter": "tracing_exporter",
	"metrics-exporter": "metrics_exporter",
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "ltdstatus",
		Short:         "Report the health of LSST the Docs products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("base-url", "", "keeper API root (default https://keeper.lsst.codes)")
	flags.String("log-level", "", "debug, info, warn or error (default info)")
	flags.Int("max-in-flight", 0, "process-wide limit on concurrent upstream requests (default 32)")
	flags.Int("max-products", 0, "concurrent product probes per check (default 8)")
	flags.Int("max-editions", 0, "concurrent edition probes per product (default 16)")
	flags.Duration("probe-timeout", 0, "deadline per upstream request, 0 for none")
	flags.String("tracing-exporter", "", "otlp, stdout or none (default none)")
	flags.String("metrics-exporter", "", "otlp, prometheus, stdout or none (default prometheus)")

	root.AddCommand(
		newServeCommand(&configFile),
		newCheckCommand(&configFile),
		newVersionCommand(),
	)
	return root
}

// loadConfig layers flags that were set on the command line over the config
// file, environment and defaults.
func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	v := config.New(configFile)
	v.SetDefault("version", version)

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	return config.Load(v)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
