package sitemap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gourish-mokashi/Scrape-Data/config"
)

// DefaultProductMarker is the path fragment identifying product pages.
const DefaultProductMarker = "/products/"

// Classifier decides which discovered URLs are product pages. Its methods
// are pure: the same inputs always produce the same outputs and nothing is
// mutated along the way.
type Classifier struct {
	Marker         string
	PatternFilters []string
	MinURLs        int
	MaxURLs        int
}

// NewClassifier builds a Classifier from the scraper configuration.
func NewClassifier(cfg *config.Config) *Classifier {
	marker := cfg.ProductMarker
	if marker == "" {
		marker = DefaultProductMarker
	}
	return &Classifier{
		Marker:         marker,
		PatternFilters: cfg.PatternFilters,
		MinURLs:        cfg.MinURLs,
		MaxURLs:        cfg.MaxProducts,
	}
}

// IsProduct reports whether rawURL points at a product page: its path must
// contain the marker and the full URL must contain every pattern filter.
func (c *Classifier) IsProduct(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.Contains(parsed.Path, c.Marker) {
		return false
	}
	for _, filter := range c.PatternFilters {
		if !strings.Contains(rawURL, filter) {
			return false
		}
	}
	return true
}

// Filter selects the product URLs from urls, preserving discovery order.
// It fails when fewer than MinURLs remain and truncates the selection at
// MaxURLs; MaxURLs <= 0 means unlimited.
func (c *Classifier) Filter(urls []string) ([]string, error) {
	var products []string
	for _, u := range urls {
		if c.IsProduct(u) {
			products = append(products, u)
		}
	}
	if len(products) < c.MinURLs {
		return nil, fmt.Errorf("found %d product urls, need at least %d", len(products), c.MinURLs)
	}
	if c.MaxURLs > 0 && len(products) > c.MaxURLs {
		products = products[:c.MaxURLs]
	}
	return products, nil
}
