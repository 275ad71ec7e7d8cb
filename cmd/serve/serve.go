// Package serve implements the HTTP server command.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"

	"github.com/rcanovic/restaurant-reviews/internal/api"
	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/spf13/cobra"
)

// Command creates the serve command, which runs the API server until
// interrupted.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the restaurant review API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
}

func runServer(settings *conf.Settings) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database output enabled in configuration")
	}

	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			slog.Error("Failed to close datastore", "error", err)
		}
	}()

	controller, err := api.New(settings, ds)
	if err != nil {
		return fmt.Errorf("failed to initialize API controller: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(settings.WebServer.Host, settings.WebServer.Port)
	slog.Info("Starting API server", "addr", addr)
	return controller.Start(ctx, addr)
}
