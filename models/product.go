// Package models defines data structures for the scraper.
package models

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SizeLabels is the fixed ordering of size columns in flattened output.
var SizeLabels = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL"}

// Product represents one scraped product page. Absent fields stay nil or
// empty and are omitted from JSON; they are never an error.
type Product struct {
	Name            string          `json:"product_name,omitempty"`
	URL             string          `json:"url"`
	PageTitle       string          `json:"page_title,omitempty"`
	OriginalPrice   *int            `json:"original_price,omitempty"`
	SalePrice       *int            `json:"sale_price,omitempty"`
	DiscountPercent string          `json:"discount_percentage,omitempty"`
	SavingsAmount   *int            `json:"savings_amount,omitempty"`
	Fabric          string          `json:"fabric,omitempty"`
	Fit             string          `json:"fit,omitempty"`
	Closure         string          `json:"closure,omitempty"`
	Collar          string          `json:"collar,omitempty"`
	Sleeve          string          `json:"sleeve,omitempty"`
	Pattern         string          `json:"pattern,omitempty"`
	Occasion        string          `json:"occasion,omitempty"`
	Sizes           map[string]bool `json:"sizes,omitempty"`
	Images          []string        `json:"images,omitempty"`
	MainImage       string          `json:"main_image,omitempty"`
	ScrapedAt       time.Time       `json:"scraped_at,omitempty"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// Handle returns the product handle: the path segment following /products/,
// sanitized for use in filenames. Falls back to the last path segment.
func (p *Product) Handle() string {
	parsed, err := url.Parse(p.URL)
	if err != nil {
		return "product"
	}
	path := strings.Trim(parsed.Path, "/")
	segments := strings.Split(path, "/")
	handle := ""
	for i, seg := range segments {
		if seg == "products" && i+1 < len(segments) {
			handle = segments[i+1]
			break
		}
	}
	if handle == "" && len(segments) > 0 {
		handle = segments[len(segments)-1]
	}
	handle = unsafeFilenameChars.ReplaceAllString(handle, "-")
	handle = strings.Trim(handle, "-")
	if handle == "" {
		return "product"
	}
	return handle
}

// Flatten renders the populated fields as CSV cells keyed by column name.
// Sizes become <SIZE>_available boolean columns and the image list collapses
// to total_images plus main_image.
func (p *Product) Flatten() map[string]string {
	row := make(map[string]string)
	if p.Name != "" {
		row["product_name"] = p.Name
	}
	if p.URL != "" {
		row["url"] = p.URL
	}
	if p.OriginalPrice != nil {
		row["original_price"] = strconv.Itoa(*p.OriginalPrice)
	}
	if p.SalePrice != nil {
		row["sale_price"] = strconv.Itoa(*p.SalePrice)
	}
	if p.DiscountPercent != "" {
		row["discount_percentage"] = p.DiscountPercent
	}
	if p.SavingsAmount != nil {
		row["savings_amount"] = strconv.Itoa(*p.SavingsAmount)
	}
	for column, value := range map[string]string{
		"fabric":   p.Fabric,
		"fit":      p.Fit,
		"closure":  p.Closure,
		"collar":   p.Collar,
		"sleeve":   p.Sleeve,
		"pattern":  p.Pattern,
		"occasion": p.Occasion,
	} {
		if value != "" {
			row[column] = value
		}
	}
	for label, available := range p.Sizes {
		row[label+"_available"] = strconv.FormatBool(available)
	}
	if len(p.Images) > 0 {
		row["total_images"] = strconv.Itoa(len(p.Images))
	}
	if p.MainImage != "" {
		row["main_image"] = p.MainImage
	}
	return row
}

// canonicalColumns is the preferred ordering for known CSV columns. Size
// columns slot in between these and the image columns.
var canonicalColumns = []string{
	"product_name", "url", "original_price", "sale_price",
	"discount_percentage", "savings_amount",
	"fabric", "fit", "closure", "collar", "sleeve", "pattern", "occasion",
}

var trailingColumns = []string{"total_images", "main_image"}

// CSVColumns returns the union of column names across all products in a
// deterministic order: canonical columns first, then size columns in label
// order, then image columns, then anything else sorted.
func CSVColumns(products []*Product) []string {
	seen := make(map[string]bool)
	for _, p := range products {
		if p == nil {
			continue
		}
		for column := range p.Flatten() {
			seen[column] = true
		}
	}

	used := make(map[string]bool, len(seen))
	columns := make([]string, 0, len(seen))
	appendIf := func(column string) {
		if seen[column] && !used[column] {
			columns = append(columns, column)
			used[column] = true
		}
	}

	for _, column := range canonicalColumns {
		appendIf(column)
	}
	for _, label := range SizeLabels {
		appendIf(label + "_available")
	}
	for _, column := range trailingColumns {
		appendIf(column)
	}

	var extra []string
	for column := range seen {
		if !used[column] {
			extra = append(extra, column)
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}
