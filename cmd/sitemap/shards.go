package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/romangod6/company-sitemaps/internal/runner"
)

func newShardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shards",
		Short: "Write the static, company and index sitemaps from the company database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return runner.ErrNoStore
			}
			defer store.Close()

			run, err := runner.New(cfg, store).RunShards(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSuccessfully generated %d sitemap files:\n", len(run.Files))
			for _, f := range run.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
