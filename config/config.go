package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	SitemapURL       string        `mapstructure:"sitemap_url"`
	AllowedDomains   []string      `mapstructure:"allowed_domains"`
	ProductMarker    string        `mapstructure:"product_marker"`
	PatternFilters   []string      `mapstructure:"pattern_filters"`
	MinURLs          int           `mapstructure:"min_urls"`
	MaxProducts      int           `mapstructure:"max_products"`
	MaxSitemapDepth  int           `mapstructure:"max_sitemap_depth"`
	Delay            time.Duration `mapstructure:"delay"`
	Timeout          time.Duration `mapstructure:"timeout"`
	OutputDir        string        `mapstructure:"output_dir"`
	UserAgent        string        `mapstructure:"user_agent"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	Verbose          bool          `mapstructure:"verbose"`
	RespectRobotsTxt bool          `mapstructure:"respect_robots_txt"`
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		SitemapURL:       "https://thehouseofrare.com/sitemap.xml",
		AllowedDomains:   []string{"thehouseofrare.com", "www.thehouseofrare.com"},
		ProductMarker:    "/products/",
		PatternFilters:   nil,
		MinURLs:          1,
		MaxProducts:      50,
		MaxSitemapDepth:  5,
		Delay:            800 * time.Millisecond,
		Timeout:          30 * time.Second,
		OutputDir:        "output",
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		MetricsAddr:      "",
		Verbose:          false,
		RespectRobotsTxt: false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.SitemapURL == "" {
		return fmt.Errorf("sitemap URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.SitemapURL)
	if err != nil {
		return fmt.Errorf("invalid sitemap URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("sitemap URL must include a host")
	}

	if len(c.AllowedDomains) == 0 {
		return fmt.Errorf("allowed domains cannot be empty")
	}
	for _, domain := range c.AllowedDomains {
		if domain == "" {
			return fmt.Errorf("allowed domains cannot contain empty entries")
		}
	}
	if c.ProductMarker == "" {
		return fmt.Errorf("product marker cannot be empty")
	}
	if c.MinURLs < 0 {
		return fmt.Errorf("min URLs cannot be negative")
	}
	if c.MaxProducts < 0 {
		return fmt.Errorf("max products cannot be negative")
	}
	if c.MaxProducts > 0 && c.MinURLs > c.MaxProducts {
		return fmt.Errorf("min URLs (%d) cannot exceed max products (%d)", c.MinURLs, c.MaxProducts)
	}
	if c.MaxSitemapDepth <= 0 {
		return fmt.Errorf("max sitemap depth must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
