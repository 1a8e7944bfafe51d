package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/delordemm1/agency-portfolio-api/internal/config"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on, overrides SERVER_PORT" short:"p"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		var a *app

		hooks.OnStart(func() {
			cfg, err := config.Load()
			if err != nil {
				logger.Error("failed to load configuration", "error", err)
				os.Exit(1)
			}
			logger.Info("configuration loaded successfully", "env", cfg.Server.Env)

			port := cfg.Server.Port
			if options.Port != 0 {
				port = fmt.Sprint(options.Port)
			}
			a, err = newApp(context.Background(), cfg, logger, ":"+port)
			if err != nil {
				logger.Error("failed to start", "error", err)
				os.Exit(1)
			}
			if err := a.serve(); err != nil {
				logger.Error("server failed", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if a != nil {
				a.shutdown(15 * time.Second)
			}
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openAPIDocument(logger)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})

	cli.Run()
}
