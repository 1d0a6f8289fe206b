// Package scraper fetches single product pages and extracts their data.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/gourish-mokashi/Scrape-Data/config"
	"github.com/gourish-mokashi/Scrape-Data/models"
	"github.com/gourish-mokashi/Scrape-Data/parser"
)

// browserHeaders mimic a desktop browser so the storefront serves the full
// product markup. Accept-Encoding is deliberately absent: the transport
// negotiates gzip itself and decodes it transparently.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Upgrade-Insecure-Requests": "1",
}

// Scraper fetches product pages from the configured domains one at a time.
type Scraper struct {
	cfg       *config.Config
	extractor *parser.Extractor
	logger    *slog.Logger
	Metrics   *Metrics

	transport http.RoundTripper
}

// New builds a scraper instance configured from cfg. A nil logger falls
// back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) (*Scraper, error) {
	if len(cfg.AllowedDomains) == 0 {
		return nil, fmt.Errorf("at least one allowed domain is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		cfg:       cfg,
		extractor: parser.New(logger),
		logger:    logger,
		Metrics:   NewMetrics(),
		transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}, nil
}

// newCollector builds a fresh collector per scrape so revisits of the same
// URL are never suppressed by collector state.
func (s *Scraper) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.AllowedDomains(s.cfg.AllowedDomains...),
		colly.UserAgent(s.cfg.UserAgent),
	)
	collector.SetRequestTimeout(s.cfg.Timeout)
	collector.IgnoreRobotsTxt = !s.cfg.RespectRobotsTxt
	if s.transport != nil {
		collector.WithTransport(s.transport)
	}
	return collector
}

// ScrapeProduct fetches one product page and extracts its fields. URLs
// outside the allowed domains are rejected before any request goes out.
// Failures come back as DomainError, TransportError or ParseError.
func (s *Scraper) ScrapeProduct(ctx context.Context, productURL string) (*models.Product, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, TransportError{URL: productURL, Err: err}
	}

	start := time.Now()
	collector := s.newCollector()

	var (
		body       []byte
		statusCode int
		fetchErr   error
	)
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range browserHeaders {
			r.Headers.Set(key, value)
		}
		s.Metrics.IncRequest("started")
	})
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
		s.Metrics.IncRequest("success")
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
		s.Metrics.IncRequest("error")
	})

	visitErr := collector.Visit(productURL)
	collector.Wait()
	s.Metrics.ObserveScrapeDuration(time.Since(start))

	if err := firstError(fetchErr, visitErr); err != nil || statusCode >= http.StatusBadRequest {
		classified := classify(productURL, err, statusCode)
		s.logger.Warn("scrape failed",
			slog.String("url", productURL),
			slog.Int("status", statusCode),
			slog.Any("error", classified),
		)
		s.Metrics.IncFailure(KindOf(classified))
		return nil, classified
	}

	product, err := s.extractor.Extract(body, productURL)
	if err != nil {
		classified := ParseError{URL: productURL, Err: err}
		s.logger.Warn("scrape failed",
			slog.String("url", productURL),
			slog.Any("error", classified),
		)
		s.Metrics.IncFailure(models.KindParseError)
		return nil, classified
	}
	product.ScrapedAt = time.Now().UTC()

	s.Metrics.IncProducts()
	s.logger.Info("product scraped",
		slog.String("url", productURL),
		slog.String("name", product.Name),
		slog.Duration("took", time.Since(start)),
	)
	return product, nil
}

// SaveProduct writes one product as an indented JSON file under dir. The
// filename combines the product handle with the capture timestamp.
func (s *Scraper) SaveProduct(p *models.Product, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	stamp := p.ScrapedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.json", p.Handle(), stamp.Unix()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create product file: %w", err)
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(p); err != nil {
		f.Close()
		return "", fmt.Errorf("encode product: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close product file: %w", err)
	}
	return path, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
