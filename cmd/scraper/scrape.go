package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gourish-mokashi/Scrape-Data/scraper"
)

var (
	scrapeSave bool
	scrapeOut  string
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape a single product page",
		Long: `Fetch one product URL, extract its fields, and print the product as JSON.

The URL must belong to one of the configured allowed domains; anything
else is rejected before a single request goes out.`,
		Args: cobra.ExactArgs(1),
		RunE: runScrape,
	}

	cmd.Flags().BoolVar(&scrapeSave, "save", false, "write the product to a timestamped JSON file")
	cmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "directory for saved files (defaults to the configured output dir)")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg.Verbose)

	s, err := scraper.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	product, err := s.ScrapeProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(product); err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	if scrapeSave {
		dir := scrapeOut
		if dir == "" {
			dir = cfg.OutputDir
		}
		path, err := s.SaveProduct(product, dir)
		if err != nil {
			return fmt.Errorf("save product: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", path)
	}

	return nil
}
