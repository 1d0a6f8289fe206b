package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty sitemap url",
			mutate: func(cfg *Config) {
				cfg.SitemapURL = ""
			},
			wantErr: "sitemap URL",
		},
		{
			name: "sitemap url without host",
			mutate: func(cfg *Config) {
				cfg.SitemapURL = "http://"
			},
			wantErr: "sitemap URL",
		},
		{
			name: "no allowed domains",
			mutate: func(cfg *Config) {
				cfg.AllowedDomains = nil
			},
			wantErr: "allowed domains",
		},
		{
			name: "blank allowed domain",
			mutate: func(cfg *Config) {
				cfg.AllowedDomains = []string{"thehouseofrare.com", ""}
			},
			wantErr: "allowed domains",
		},
		{
			name: "empty product marker",
			mutate: func(cfg *Config) {
				cfg.ProductMarker = ""
			},
			wantErr: "product marker",
		},
		{
			name: "negative min urls",
			mutate: func(cfg *Config) {
				cfg.MinURLs = -1
			},
			wantErr: "min URLs",
		},
		{
			name: "min urls above max products",
			mutate: func(cfg *Config) {
				cfg.MinURLs = 100
				cfg.MaxProducts = 10
			},
			wantErr: "cannot exceed max products",
		},
		{
			name: "zero sitemap depth",
			mutate: func(cfg *Config) {
				cfg.MaxSitemapDepth = 0
			},
			wantErr: "sitemap depth",
		},
		{
			name: "negative delay",
			mutate: func(cfg *Config) {
				cfg.Delay = -1 * time.Second
			},
			wantErr: "delay",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty output dir",
			mutate: func(cfg *Config) {
				cfg.OutputDir = ""
			},
			wantErr: "output directory",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SitemapURL != "https://thehouseofrare.com/sitemap.xml" {
		t.Fatalf("SitemapURL = %q, want default", cfg.SitemapURL)
	}
	if cfg.MaxProducts != 50 {
		t.Fatalf("MaxProducts = %d, want 50", cfg.MaxProducts)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SCRAPER_SITEMAP_URL", "https://example.test/sitemap.xml")
	t.Setenv("SCRAPER_MAX_PRODUCTS", "7")
	t.Setenv("SCRAPER_DELAY", "2s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SitemapURL != "https://example.test/sitemap.xml" {
		t.Fatalf("SitemapURL = %q, want env override", cfg.SitemapURL)
	}
	if cfg.MaxProducts != 7 {
		t.Fatalf("MaxProducts = %d, want 7", cfg.MaxProducts)
	}
	if cfg.Delay != 2*time.Second {
		t.Fatalf("Delay = %v, want 2s", cfg.Delay)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	body := strings.Join([]string{
		"sitemap_url: https://shop.example.test/sitemap.xml",
		"product_marker: /items/",
		"min_urls: 3",
		"timeout: 15s",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SitemapURL != "https://shop.example.test/sitemap.xml" {
		t.Fatalf("SitemapURL = %q", cfg.SitemapURL)
	}
	if cfg.ProductMarker != "/items/" {
		t.Fatalf("ProductMarker = %q", cfg.ProductMarker)
	}
	if cfg.MinURLs != 3 {
		t.Fatalf("MinURLs = %d", cfg.MinURLs)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	// Values the file does not mention keep their defaults.
	if cfg.MaxSitemapDepth != 5 {
		t.Fatalf("MaxSitemapDepth = %d, want 5", cfg.MaxSitemapDepth)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
