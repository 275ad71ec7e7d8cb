package main

import (
	"fmt"
	"os"

	"github.com/rcanovic/restaurant-reviews/cmd"
	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/rcanovic/restaurant-reviews/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.Debug)
	if err := datastore.InitializeLogger(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: datastore file logging unavailable: %v\n", err)
	}
	defer func() {
		_ = datastore.CloseLogger()
	}()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
