package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lite-lake/technisync/internal/infrastructure/logger"
)

// errorBackoff is how long the daemon waits after a failed cycle
// before trying again, regardless of the configured interval.
const errorBackoff = 60 * time.Second

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the synchronization daemon",
		Long:  "Run continuous synchronization, one cycle every sync interval, until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context())
		},
	}
}

func runDaemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	manager := app.Manager()
	logger.Info("starting synchronization daemon",
		"servers", len(app.Config.Servers),
		"interval", app.Config.SyncInterval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-timer.C:
		}

		wait := app.Config.SyncInterval
		if err := manager.Sync(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("shutting down")
				return nil
			}
			logger.Error("synchronization cycle failed", "error", err)
			wait = errorBackoff
		}
		timer.Reset(wait)
	}
}
