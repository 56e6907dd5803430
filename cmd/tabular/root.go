package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabular/internal/config"
	"github.com/JonMunkholm/tabular/internal/logging"
)

type commandContext struct {
	logLevel    string
	logFormat   string
	headersFile string
	output      string

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "tabular",
		Short:         "Read, convert and summarize CSV and spreadsheet documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&ctx.logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")
	flags.StringVar(&ctx.headersFile, "headers", "", "TOML file with a [headers] table of display names")
	flags.StringVarP(&ctx.output, "output", "o", "auto", "Output style: auto, table or csv")

	rootCmd.AddCommand(newReadCommand(ctx))
	rootCmd.AddCommand(newSheetsCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newAppendCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newFormatsCommand(ctx))

	return rootCmd
}

// setup loads configuration, applies flag overrides and configures logging.
func (c *commandContext) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	c.cfg = cfg
	return nil
}
