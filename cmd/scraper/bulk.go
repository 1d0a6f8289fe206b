package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gourish-mokashi/Scrape-Data/config"
	"github.com/gourish-mokashi/Scrape-Data/models"
	"github.com/gourish-mokashi/Scrape-Data/pipeline"
)

var (
	bulkSitemap     string
	bulkOut         string
	bulkMax         int
	bulkMin         int
	bulkDelay       time.Duration
	bulkMarker      string
	bulkFilters     []string
	bulkMetricsAddr string
)

// bulkCmd creates the "bulk" subcommand.
func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Discover product URLs from the sitemap and scrape them all",
		Long: `Walk the configured sitemap, classify product URLs, and scrape them
sequentially with a politeness delay. Produces combined JSON and CSV
files plus a run report; individual failures are recorded in the report
and never abort the run.`,
		Args: cobra.NoArgs,
		RunE: runBulk,
	}

	cmd.Flags().StringVar(&bulkSitemap, "sitemap", "", "sitemap URL to discover products from")
	cmd.Flags().StringVarP(&bulkOut, "out", "o", "", "output directory")
	cmd.Flags().IntVarP(&bulkMax, "max", "m", 0, "maximum products to scrape (0 = unlimited)")
	cmd.Flags().IntVar(&bulkMin, "min", 0, "minimum discovered product URLs required to proceed")
	cmd.Flags().DurationVar(&bulkDelay, "delay", 0, "delay between product requests")
	cmd.Flags().StringVar(&bulkMarker, "marker", "", "path marker identifying product URLs")
	cmd.Flags().StringSliceVar(&bulkFilters, "filter", nil, "substring filters product URLs must match")
	cmd.Flags().StringVar(&bulkMetricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	return cmd
}

func runBulk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyBulkOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg.Verbose)

	b, err := pipeline.NewBulk(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialising pipeline: %w", err)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		if m := b.Metrics(); m != nil {
			metricsServer = &http.Server{
				Addr:    cfg.MetricsAddr,
				Handler: promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
			}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", slog.Any("error", err))
				}
			}()
			logger.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		}
	}

	report, err := b.Run(cmd.Context())

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", shutdownErr))
		}
		cancel()
	}

	if err != nil {
		return fmt.Errorf("bulk scrape: %w", err)
	}

	printSummary(report)
	return nil
}

// applyBulkOverrides layers explicitly-set flags over the loaded config.
func applyBulkOverrides(cmd *cobra.Command, cfg *config.Config) {
	if bulkSitemap != "" {
		cfg.SitemapURL = bulkSitemap
	}
	if bulkOut != "" {
		cfg.OutputDir = bulkOut
	}
	if cmd.Flags().Changed("max") {
		cfg.MaxProducts = bulkMax
	}
	if cmd.Flags().Changed("min") {
		cfg.MinURLs = bulkMin
	}
	if cmd.Flags().Changed("delay") {
		cfg.Delay = bulkDelay
	}
	if bulkMarker != "" {
		cfg.ProductMarker = bulkMarker
	}
	if len(bulkFilters) > 0 {
		cfg.PatternFilters = bulkFilters
	}
	if bulkMetricsAddr != "" {
		cfg.MetricsAddr = bulkMetricsAddr
	}
}

func printSummary(report *models.ScrapeReport) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Bulk scrape complete")
	fmt.Printf("  Products:      %d/%d\n", report.Summary.SuccessfulScrapes, report.Summary.TotalURLs)
	fmt.Printf("  Success rate:  %s\n", report.Summary.SuccessRate)
	fmt.Printf("  Failures:      %d\n", report.Summary.FailedScrapes)
	for _, failure := range report.Failures {
		fmt.Printf("    %-16s %s\n", failure.Kind, failure.URL)
	}
	fmt.Printf("  Duration:      %s\n", report.Summary.Duration)
	fmt.Printf("  Avg/product:   %s\n", report.Summary.AverageTimePerProduct)
	fmt.Printf("  Combined JSON: %s\n", report.FilesCreated.CombinedJSON)
	fmt.Printf("  Combined CSV:  %s\n", report.FilesCreated.CombinedCSV)
	if report.FilesCreated.FailedURLs != "" {
		fmt.Printf("  Failed URLs:   %s\n", report.FilesCreated.FailedURLs)
	}
	fmt.Println(separator)
}
