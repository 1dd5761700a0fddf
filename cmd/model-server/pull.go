package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pullCmd = &cobra.Command{
	Use:   "pull REPOSITORY FILE",
	Short: "Download a hub file into the local cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		undo := initLogger(cfg.Service.LogLevel, cfg.Service.LogFormat)
		defer undo()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		locator := api.HubLocator{Repository: args[0], File: args[1]}
		zap.S().Infow("pulling hub file", "locator", locator)

		path, err := newHubFetcher(cfg).Fetch(ctx, locator)
		if err != nil {
			zap.S().Errorw("failed to pull hub file", "locator", locator, "error", err)
			return err
		}

		zap.S().Infow("hub file cached", "path", path)
		return nil
	},
}
