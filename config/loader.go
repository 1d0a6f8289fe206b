package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional file and the environment.
// Priority (highest to lowest): env vars > config file > defaults.
// Environment variables use the SCRAPER_ prefix, e.g. SCRAPER_SITEMAP_URL.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("scraper")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// A missing config file is fine unless one was explicitly requested.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("sitemap_url", cfg.SitemapURL)
	v.SetDefault("allowed_domains", cfg.AllowedDomains)
	v.SetDefault("product_marker", cfg.ProductMarker)
	v.SetDefault("pattern_filters", cfg.PatternFilters)
	v.SetDefault("min_urls", cfg.MinURLs)
	v.SetDefault("max_products", cfg.MaxProducts)
	v.SetDefault("max_sitemap_depth", cfg.MaxSitemapDepth)
	v.SetDefault("delay", cfg.Delay)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("user_agent", cfg.UserAgent)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("respect_robots_txt", cfg.RespectRobotsTxt)
}
