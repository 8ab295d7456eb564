package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/damacus/ironshelf/internal/config"
	"github.com/damacus/ironshelf/internal/logger"
	"github.com/damacus/ironshelf/internal/services"
)

// Flag names shared by every command.
const (
	flagConfig    = "config"
	flagOutput    = "output"
	flagProfile   = "profile"
	flagEndpoint  = "endpoint"
	flagAccessKey = "access-key"
	flagSecretKey = "secret-key"
	flagRegion    = "region"
	flagPathStyle = "path-style"
	flagLogLevel  = "log-level"
)

// boundFlags maps persistent flags onto config keys so that a flag given on
// the command line beats the environment and the config file.
var boundFlags = map[string]string{
	flagEndpoint:  "connection.endpoint",
	flagAccessKey: "connection.accessKey",
	flagSecretKey: "connection.secretKey",
	flagRegion:    "connection.region",
	flagPathStyle: "connection.pathStyle",
	flagLogLevel:  "log.level",
}

// newRootCmd builds the command tree. factory is nil outside tests.
func newRootCmd(factory services.StoreFactory) *cobra.Command {
	app := &appContainer{factory: factory}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ironshelf",
		Short: "ironshelf manages buckets and objects on S3-compatible storage.",
		Long: `A local manager for S3-compatible object storage. Run 'ironshelf serve'
for the web UI, or use the commands below to work from the shell.

Connection settings come from flags, IRONSHELF_CONNECTION_* environment
variables or the config file. --profile reuses a saved connection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch app.output {
			case outputTable, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unsupported output format %q (table, json, yaml)", app.output)
			}

			v, err := config.New(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Root().PersistentFlags()
			for name, key := range boundFlags {
				if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
					return err
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			log := logger.New(&logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Output: cmd.ErrOrStderr(),
			})
			return app.init(cfg, log)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, flagConfig, "", "config file (default $XDG_CONFIG_HOME/ironshelf/config.yaml)")
	pf.StringVarP(&app.output, flagOutput, "o", outputTable, "output format: table, json or yaml")
	pf.StringVarP(&app.profile, flagProfile, "p", "", "ID of a saved connection to use")
	addConnectionFlags(pf)
	pf.String(flagLogLevel, "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newServeCmd(app), newBucketsCmd(app), newHistoryCmd(app))
	rootCmd.AddCommand(newObjectCmds(app)...)
	return rootCmd
}

func addConnectionFlags(pf *pflag.FlagSet) {
	pf.String(flagEndpoint, "", "store endpoint, host:port or URL")
	pf.String(flagAccessKey, "", "access key")
	pf.String(flagSecretKey, "", "secret key")
	pf.String(flagRegion, "", "region (default us-east-1)")
	pf.Bool(flagPathStyle, true, "use path-style addressing")
}
