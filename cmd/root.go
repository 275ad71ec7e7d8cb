package cmd

import (
	"github.com/rcanovic/restaurant-reviews/cmd/seed"
	"github.com/rcanovic/restaurant-reviews/cmd/serve"
	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "restaurant-reviews",
		Short: "Restaurant review catalog service",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		serve.Command(settings),
		seed.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines persistent flags bound to viper keys so command-line
// arguments take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.WebServer.Host, "host", settings.WebServer.Host, "Interface for the web server to bind to")
	rootCmd.PersistentFlags().StringVar(&settings.WebServer.Port, "port", settings.WebServer.Port, "Port for the web server")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("webserver.host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("webserver.port", rootCmd.PersistentFlags().Lookup("port"))
}
