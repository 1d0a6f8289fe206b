package models

import (
	"fmt"
	"time"
)

// FailureKind categorizes why a single product scrape failed.
type FailureKind string

const (
	// KindDomainRejected marks URLs refused by the allow-list before any
	// network call.
	KindDomainRejected FailureKind = "DomainRejected"
	// KindTransportError marks network failures and non-success statuses.
	KindTransportError FailureKind = "TransportError"
	// KindParseError marks responses whose body could not be parsed.
	KindParseError FailureKind = "ParseError"
)

// Failure records one failed URL in a bulk run.
type Failure struct {
	URL     string      `json:"url"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Summary aggregates counts and timing for a bulk run.
type Summary struct {
	TotalURLs             int    `json:"total_urls"`
	SuccessfulScrapes     int    `json:"successful_scrapes"`
	FailedScrapes         int    `json:"failed_scrapes"`
	SuccessRate           string `json:"success_rate"`
	Duration              string `json:"duration"`
	AverageTimePerProduct string `json:"average_time_per_product"`
}

// FilesCreated lists the artifacts a bulk run produced.
type FilesCreated struct {
	CombinedJSON           string `json:"combined_json,omitempty"`
	CombinedCSV            string `json:"combined_csv,omitempty"`
	FailedURLs             string `json:"failed_urls,omitempty"`
	IndividualFilesCleaned int    `json:"individual_files_cleaned"`
}

// ScrapeReport is the machine-readable record of a bulk run. Products are
// carried in memory for the combined outputs but excluded from the report
// JSON itself.
type ScrapeReport struct {
	Summary       Summary      `json:"scraping_summary"`
	Failures      []Failure    `json:"failures"`
	FilesCreated  FilesCreated `json:"files_created"`
	SitemapSource string       `json:"sitemap_source,omitempty"`
	CompletedAt   time.Time    `json:"scraping_completed_at"`
	Products      []*Product   `json:"-"`
}

// NewSummary computes the derived rate and timing fields from raw counts.
func NewSummary(total, succeeded, failed int, elapsed time.Duration) Summary {
	rate := 0.0
	if total > 0 {
		rate = float64(succeeded) / float64(total) * 100
	}
	avg := time.Duration(0)
	if total > 0 {
		avg = elapsed / time.Duration(total)
	}
	return Summary{
		TotalURLs:             total,
		SuccessfulScrapes:     succeeded,
		FailedScrapes:         failed,
		SuccessRate:           fmt.Sprintf("%.1f%%", rate),
		Duration:              elapsed.Round(time.Millisecond).String(),
		AverageTimePerProduct: avg.Round(10 * time.Millisecond).String(),
	}
}
