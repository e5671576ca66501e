package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tinynet-ml/tinynet/internal/demo"
	"github.com/tinynet-ml/tinynet/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the XOR and autoencoder networks over a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			app, err := demo.NewApp(cfg.Models, c.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(app,
				server.WithLogger(c.logger),
				server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
			)
			return srv.ListenAndServe(ctx, cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	return cmd
}
