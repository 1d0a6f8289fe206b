package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gourish-mokashi/Scrape-Data/models"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry              *prometheus.Registry
	RequestsTotal         *prometheus.CounterVec
	ScrapeDuration        prometheus.Histogram
	ProductsScrapedTotal  prometheus.Counter
	FailuresTotal         *prometheus.CounterVec
	SitemapURLsDiscovered prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
		[]string{"phase"},
	)
	scrapeDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_scrape_duration_seconds",
			Help:    "Time spent fetching and extracting one product page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	productsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_scraped_total",
			Help: "Total number of products successfully extracted.",
		},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_failures_total",
			Help: "Total number of failed product scrapes by kind.",
		},
		[]string{"kind"},
	)
	sitemapURLs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_sitemap_urls_discovered_total",
			Help: "Total number of page URLs discovered through sitemaps.",
		},
	)

	registry.MustRegister(requests, scrapeDuration, productsScraped, failures, sitemapURLs)

	return &Metrics{
		Registry:              registry,
		RequestsTotal:         requests,
		ScrapeDuration:        scrapeDuration,
		ProductsScrapedTotal:  productsScraped,
		FailuresTotal:         failures,
		SitemapURLsDiscovered: sitemapURLs,
	}
}

// IncRequest increments the requests total counter for a phase.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveScrapeDuration records how long one product scrape took.
func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

// IncProducts increments the scraped products counter.
func (m *Metrics) IncProducts() {
	if m == nil {
		return
	}
	m.ProductsScrapedTotal.Inc()
}

// IncFailure increments the failures counter for a kind label.
func (m *Metrics) IncFailure(kind models.FailureKind) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(string(kind)).Inc()
}

// AddSitemapURLs adds n to the discovered URL counter.
func (m *Metrics) AddSitemapURLs(n int) {
	if m == nil {
		return
	}
	m.SitemapURLsDiscovered.Add(float64(n))
}
