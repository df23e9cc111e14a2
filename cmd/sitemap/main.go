package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/romangod6/company-sitemaps/config"
	"github.com/romangod6/company-sitemaps/internal/storage"
)

var version = "dev"

var (
	cfgFile string
	debug   bool
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sitemap",
		Short:         "Generate sitemaps for the company directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newGenerateCommand(),
		newShardsCommand(),
		newServeCommand(),
		newInspectCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "sitemap version %s\n", version)
			},
		},
	)

	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openStore returns a nil Store when no database URL is configured.
func openStore(cfg *config.Config) (storage.Store, error) {
	if !cfg.HasDatabase() {
		return nil, nil
	}

	store, err := storage.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}

	return store, nil
}
