package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemdevart/random-coffee/internal/app"
	"github.com/systemdevart/random-coffee/internal/config"
	"github.com/systemdevart/random-coffee/internal/logger"
)

func newRootCmd() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:           "random-coffee",
		Short:         "Weekly Random Coffee pairing bot for Slack",
		Long:          "Pairs channel members for weekly coffee chats and posts the pairings to the channel.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			// Ensure logger flush; ignore sync error (common on some platforms).
			defer func() { _ = log.Sync() }()

			application, err := app.New(cfg, log)
			if err != nil {
				log.Error("app init failed", zap.Error(err))
				return err
			}

			if err := application.Run(cmd.Context()); err != nil {
				log.Error("app run failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Token, "token", "t", "", "Slack API token")
	cmd.Flags().StringVarP(&flags.Channel, "channel", "c", "", "Slack channel for pairing announcements")
	cmd.Flags().StringVar(&flags.Time, "time", "", "weekly pairing time (HH:MM, 24-hour, UTC)")
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "", "path to JSON configuration file")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = os.Stderr.WriteString("random-coffee: " + err.Error() + "\n")
		os.Exit(2)
	}
}
