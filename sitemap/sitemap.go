// Package sitemap discovers product URLs by walking a site's XML sitemaps.
package sitemap

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/antchfx/xmlquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gourish-mokashi/Scrape-Data/config"
)

// Kind identifies the root element of a sitemap document.
type Kind int

const (
	// KindURLSet is a leaf sitemap listing page URLs.
	KindURLSet Kind = iota
	// KindIndex is a sitemap index listing nested sitemap URLs.
	KindIndex
)

const (
	// DefaultMaxDepth bounds how far nested sitemap indexes are followed.
	DefaultMaxDepth = 5
	// MaxSitemapBytes caps how much of a single sitemap document is read.
	MaxSitemapBytes = 10 << 20

	dedupeCacheSize = 65536
)

// Parse reads one sitemap document and returns its kind plus the <loc>
// entries in document order. Documents whose root element is neither
// sitemapindex nor urlset are rejected.
func Parse(data []byte) (Kind, []string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("parse sitemap: %w", err)
	}

	kind := KindIndex
	root := doc.SelectElement("sitemapindex")
	if root == nil {
		kind = KindURLSet
		root = doc.SelectElement("urlset")
	}
	if root == nil {
		return 0, nil, fmt.Errorf("unrecognized sitemap root element")
	}

	var locs []string
	for _, node := range xmlquery.Find(root, "//loc") {
		if loc := strings.TrimSpace(node.InnerText()); loc != "" {
			locs = append(locs, loc)
		}
	}
	return kind, locs, nil
}

// EntryFailure records one nested sitemap that could not be processed.
type EntryFailure struct {
	SitemapURL string `json:"sitemap_url"`
	Message    string `json:"message"`
}

// Result holds the discovered page URLs and any nested sitemaps skipped
// along the way.
type Result struct {
	URLs     []string
	Failures []EntryFailure
}

// Discoverer fetches sitemap trees over HTTP.
type Discoverer struct {
	client    *http.Client
	maxDepth  int
	userAgent string
	logger    *slog.Logger
}

// NewDiscoverer builds a Discoverer from the scraper configuration. A nil
// logger falls back to slog.Default.
func NewDiscoverer(cfg *config.Config, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	maxDepth := cfg.MaxSitemapDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		// Compression is negotiated and decoded by hand so gzip, deflate
		// and brotli responses all take the same path.
		DisableCompression: true,
	}
	return &Discoverer{
		client:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxDepth:  maxDepth,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

type queuedSitemap struct {
	url   string
	depth int
}

// Discover walks the sitemap tree rooted at sitemapURL breadth-first and
// returns every page URL found, deduplicated in first-seen order. A failure
// on the root sitemap aborts the walk; failures on nested sitemaps are
// recorded in the result and skipped.
func (d *Discoverer) Discover(ctx context.Context, sitemapURL string) (*Result, error) {
	dedupe, err := lru.New[string, struct{}](dedupeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create url cache: %w", err)
	}

	result := &Result{}
	visited := make(map[string]bool)
	queue := []queuedSitemap{{url: sitemapURL, depth: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		locs, kind, err := d.read(ctx, item.url)
		if err == nil && kind == KindIndex && item.depth >= d.maxDepth {
			err = fmt.Errorf("nested sitemap depth exceeds %d", d.maxDepth)
		}
		if err != nil {
			if item.depth == 0 {
				return nil, fmt.Errorf("sitemap %s: %w", item.url, err)
			}
			d.logger.Warn("skipping nested sitemap", "url", item.url, "error", err)
			result.Failures = append(result.Failures, EntryFailure{
				SitemapURL: item.url,
				Message:    err.Error(),
			})
			continue
		}

		switch kind {
		case KindIndex:
			for _, loc := range locs {
				queue = append(queue, queuedSitemap{url: loc, depth: item.depth + 1})
			}
		case KindURLSet:
			for _, loc := range locs {
				if _, dup := dedupe.Get(loc); dup {
					continue
				}
				dedupe.Add(loc, struct{}{})
				result.URLs = append(result.URLs, loc)
			}
		}
	}

	d.logger.Info("sitemap walk complete",
		"root", sitemapURL,
		"urls", len(result.URLs),
		"skipped", len(result.Failures))
	return result, nil
}

func (d *Discoverer) read(ctx context.Context, sitemapURL string) ([]string, Kind, error) {
	data, err := d.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, 0, err
	}
	kind, locs, err := Parse(data)
	if err != nil {
		return nil, 0, err
	}
	return locs, kind, nil
}

func (d *Discoverer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	reader, err := decodeBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(reader, MaxSitemapBytes))
	if err != nil {
		return nil, err
	}
	return maybeGunzip(data)
}

func decodeBody(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		return gzip.NewReader(body)
	case "deflate":
		return flate.NewReader(body), nil
	case "br":
		return brotli.NewReader(body), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// maybeGunzip unwraps .xml.gz payloads served without a Content-Encoding
// header, detected by the gzip magic bytes.
func maybeGunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gunzip sitemap payload: %w", err)
	}
	defer gz.Close()
	return io.ReadAll(io.LimitReader(gz, MaxSitemapBytes))
}
