// Package main is a command line companion to absolute-service: it renders
// templates outside a request cycle and inspects the site registry.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"absolute/internal/app"
	"absolute/pkg/config"
	"absolute/pkg/logger"
)

// loadApp builds the application with routes registered so that names can
// be reversed.
func loadApp(ctx context.Context, quiet bool) (*app.App, error) {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	if quiet {
		log = logger.Nop()
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if _, err := a.Handler(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func rootCommand() *cobra.Command {
	var quiet bool
	root := &cobra.Command{
		Use:          "absolutectl",
		Short:        "Render absolute URLs and inspect sites",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", true, "Suppress log output")

	open := func(cmd *cobra.Command) (*app.App, error) {
		return loadApp(cmd.Context(), quiet)
	}
	root.AddCommand(
		renderCommand(open),
		reverseCommand(open),
		sitesCommand(open),
	)
	return root
}

func main() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
