// Package seed implements the development data seeding command.
package seed

import (
	"fmt"
	"log/slog"

	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/spf13/cobra"
)

// Command creates the seed command, which loads a small development dataset
// into the configured database.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development seed data into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(settings)
		},
	}
}

func runSeed(settings *conf.Settings) error {
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

	return ds.Seed()
}
