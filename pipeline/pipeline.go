// Package pipeline orchestrates bulk scraping runs end to end: sitemap
// discovery, one sequential pass over the product URLs, combined outputs
// and the final report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gourish-mokashi/Scrape-Data/config"
	"github.com/gourish-mokashi/Scrape-Data/models"
	"github.com/gourish-mokashi/Scrape-Data/scraper"
	"github.com/gourish-mokashi/Scrape-Data/sitemap"
)

const (
	combinedCSVName  = "all_products.csv"
	combinedJSONName = "all_products.json"
	failedURLsName   = "failed_urls.json"
	reportName       = "scraping_report.json"
)

// Bulk coordinates a full scraping run. Product pages are fetched one at
// a time with a polite delay between requests; there is no concurrency
// and no retrying.
type Bulk struct {
	cfg        *config.Config
	scraper    *scraper.Scraper
	discoverer *sitemap.Discoverer
	classifier *sitemap.Classifier
	logger     *slog.Logger
}

// NewBulk wires a bulk run from the configuration. A nil logger falls
// back to slog.Default.
func NewBulk(cfg *config.Config, logger *slog.Logger) (*Bulk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := scraper.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Bulk{
		cfg:        cfg,
		scraper:    s,
		discoverer: sitemap.NewDiscoverer(cfg, logger),
		classifier: sitemap.NewClassifier(cfg),
		logger:     logger,
	}, nil
}

// Metrics exposes the scraper metrics for serving.
func (b *Bulk) Metrics() *scraper.Metrics {
	return b.scraper.Metrics
}

// Run executes the bulk scrape and returns its report. Only an unusable
// top-level sitemap or a classifier minimum violation abort the run;
// individual product failures are recorded and skipped. Cancelling ctx
// stops the run between products and still produces outputs for what was
// scraped.
func (b *Bulk) Run(ctx context.Context) (*models.ScrapeReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	discovered, err := b.discoverer.Discover(ctx, b.cfg.SitemapURL)
	if err != nil {
		return nil, fmt.Errorf("discover products: %w", err)
	}
	b.scraper.Metrics.AddSitemapURLs(len(discovered.URLs))

	urls, err := b.classifier.Filter(discovered.URLs)
	if err != nil {
		return nil, fmt.Errorf("classify urls: %w", err)
	}
	b.logger.Info("bulk scrape starting",
		slog.Int("product_urls", len(urls)),
		slog.Int("sitemap_failures", len(discovered.Failures)),
	)

	runDir := filepath.Join(b.cfg.OutputDir, start.Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	itemsDir, err := os.MkdirTemp(runDir, "items-")
	if err != nil {
		return nil, fmt.Errorf("create items dir: %w", err)
	}
	// Per-item files are working state, not outputs: they are removed
	// however the run ends.
	defer func() {
		if err := os.RemoveAll(itemsDir); err != nil {
			b.logger.Warn("cleanup items dir", slog.Any("error", err))
		}
	}()

	report := &models.ScrapeReport{
		Failures:      []models.Failure{},
		SitemapSource: b.cfg.SitemapURL,
	}
	var products []*models.Product
	itemFiles := 0
	lastFailed := false

	for i, url := range urls {
		if ctx.Err() != nil {
			b.logger.Warn("bulk scrape interrupted", slog.Int("remaining", len(urls)-i))
			break
		}
		if i > 0 {
			if err := b.pause(ctx, lastFailed); err != nil {
				b.logger.Warn("bulk scrape interrupted", slog.Int("remaining", len(urls)-i))
				break
			}
		}

		product, err := b.scraper.ScrapeProduct(ctx, url)
		if err != nil {
			lastFailed = true
			report.Failures = append(report.Failures, models.Failure{
				URL:     url,
				Kind:    scraper.KindOf(err),
				Message: err.Error(),
			})
			continue
		}
		lastFailed = false
		products = append(products, product)

		if _, err := b.scraper.SaveProduct(product, itemsDir); err != nil {
			b.logger.Warn("save product file",
				slog.String("url", url),
				slog.Any("error", err),
			)
		} else {
			itemFiles++
		}
	}

	combined, err := NewDualWriter(
		filepath.Join(runDir, combinedCSVName),
		filepath.Join(runDir, combinedJSONName),
	)
	if err != nil {
		return nil, err
	}
	if err := combined.Write(products); err != nil {
		combined.Close()
		return nil, fmt.Errorf("write combined outputs: %w", err)
	}
	if err := combined.Close(); err != nil {
		return nil, fmt.Errorf("close combined outputs: %w", err)
	}
	if err := combined.Validate(); err != nil {
		b.logger.Warn("combined output validation", slog.Any("error", err))
	}

	report.Products = products
	report.FilesCreated = models.FilesCreated{
		CombinedJSON:           filepath.Join(runDir, combinedJSONName),
		CombinedCSV:            filepath.Join(runDir, combinedCSVName),
		IndividualFilesCleaned: itemFiles,
	}
	if len(report.Failures) > 0 {
		failedPath := filepath.Join(runDir, failedURLsName)
		if err := writeJSON(failedPath, report.Failures); err != nil {
			b.logger.Warn("write failed urls", slog.Any("error", err))
		} else {
			report.FilesCreated.FailedURLs = failedPath
		}
	}

	elapsed := time.Since(start)
	report.Summary = models.NewSummary(len(urls), len(products), len(report.Failures), elapsed)
	report.CompletedAt = time.Now().UTC()

	if err := writeJSON(filepath.Join(runDir, reportName), report); err != nil {
		b.logger.Warn("write scraping report", slog.Any("error", err))
	}

	b.logger.Info("bulk scrape complete",
		slog.Int("scraped", len(products)),
		slog.Int("failed", len(report.Failures)),
		slog.Duration("took", elapsed),
		slog.String("output", runDir),
	)
	return report, nil
}

// pause waits the polite delay before the next request. The delay is
// halved after a failure so one bad URL does not slow the whole run.
func (b *Bulk) pause(ctx context.Context, lastFailed bool) error {
	delay := b.cfg.Delay
	if lastFailed {
		delay /= 2
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
