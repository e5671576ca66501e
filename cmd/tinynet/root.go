package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinynet-ml/tinynet/internal/config"
	"github.com/tinynet-ml/tinynet/internal/logging"
)

// cli is the state shared by all subcommands, filled in before any of them
// runs.
type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "tinynet",
		Short:         "Train and serve small feedforward neural networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync() // stderr sync fails on some terminals
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(c),
		newTrainCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}
