package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gourish-mokashi/Scrape-Data/pipeline"
	"github.com/gourish-mokashi/Scrape-Data/sitemap"
)

var (
	sitemapAll bool
	sitemapCSV string
	sitemapMax int
)

// sitemapCmd creates the "sitemap" subcommand.
func sitemapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap [url]",
		Short: "Discover product URLs from a sitemap without scraping them",
		Long: `Walk a sitemap (following nested sitemap indexes) and print the product
URLs it contains, one per line. Defaults to the configured sitemap URL
when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSitemap,
	}

	cmd.Flags().BoolVar(&sitemapAll, "all", false, "print every discovered URL, not just products")
	cmd.Flags().StringVar(&sitemapCSV, "csv", "", "write the URL list to this CSV file")
	cmd.Flags().IntVarP(&sitemapMax, "max", "m", 0, "maximum product URLs to keep (0 = unlimited)")

	return cmd
}

func runSitemap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(args) > 0 {
		cfg.SitemapURL = args[0]
	}
	if cmd.Flags().Changed("max") {
		cfg.MaxProducts = sitemapMax
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg.Verbose)

	d := sitemap.NewDiscoverer(cfg, logger)
	result, err := d.Discover(cmd.Context(), cfg.SitemapURL)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	urls := result.URLs
	if !sitemapAll {
		urls, err = sitemap.NewClassifier(cfg).Filter(urls)
		if err != nil {
			return err
		}
	}

	for _, u := range urls {
		fmt.Println(u)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", failure.SitemapURL, failure.Message)
	}

	if sitemapCSV != "" {
		if err := pipeline.WriteURLList(sitemapCSV, urls); err != nil {
			return fmt.Errorf("write url list: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %d urls to %s\n", len(urls), sitemapCSV)
	}

	return nil
}
