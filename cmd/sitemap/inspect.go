package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/romangod6/company-sitemaps/internal/sitemap"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [path]",
		Short: "Summarize a generated sitemap.xml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = filepath.Join(cfg.Sitemap.OutputDir, sitemap.FileName)
			}

			set, err := sitemap.ReadURLSet(path)
			if err != nil {
				return err
			}
			sum := sitemap.Summarize(set)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s\n", path)
			fmt.Fprintf(out, "Total URLs found: %d\n", sum.Entries)
			fmt.Fprintf(out, "Unique locations: %d\n", sum.UniqueLocs)
			fmt.Fprintf(out, "Last modified: %v\n", sum.LastMods)
			fmt.Fprintf(out, "Company shards: %d\n", len(sum.ShardIndices))
			return nil
		},
	}
}
