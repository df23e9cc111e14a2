package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/romangod6/company-sitemaps/internal/runner"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write sitemap.xml listing the static, index and company sitemaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			if _, err := runner.New(cfg, store).RunRoot(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully generated sitemap.xml in %s directory!\n", cfg.Sitemap.OutputDir)
			return nil
		},
	}

	cmd.Flags().String("base-url", "", "URL prefix for every sitemap entry")
	cmd.Flags().String("output-dir", "", "directory sitemap.xml is written to")
	cmd.Flags().Int("shard-count", 0, "number of company sitemap entries")
	_ = viper.BindPFlag("sitemap.baseurl", cmd.Flags().Lookup("base-url"))
	_ = viper.BindPFlag("sitemap.outputdir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("sitemap.shardcount", cmd.Flags().Lookup("shard-count"))

	return cmd
}
