// Package parser extracts product data from raw HTML documents.
//
// Each field is resolved through an ordered list of strategies; the first
// strategy yielding a non-empty value wins. Missing fields are left unset
// and never fail the extraction: the only errors are an empty document or
// one the HTML parser rejects outright.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/gourish-mokashi/Scrape-Data/models"
)

// Strategy locates one candidate value in a document. Exactly one of
// Selector, XPath or Pattern should be set; Attr refines Selector to read
// an attribute instead of text content.
type Strategy struct {
	Selector string
	Attr     string
	XPath    string
	Pattern  *regexp.Regexp
}

func (s Strategy) apply(doc *goquery.Document, root *html.Node, raw string) string {
	switch {
	case s.Selector != "":
		sel := doc.Find(s.Selector).First()
		if sel.Length() == 0 {
			return ""
		}
		if s.Attr != "" {
			value, _ := sel.Attr(s.Attr)
			return strings.TrimSpace(value)
		}
		return strings.TrimSpace(sel.Text())
	case s.XPath != "":
		node, err := htmlquery.Query(root, s.XPath)
		if err != nil || node == nil {
			return ""
		}
		return strings.TrimSpace(htmlquery.InnerText(node))
	case s.Pattern != nil:
		if m := s.Pattern.FindStringSubmatch(raw); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func firstMatch(strategies []Strategy, doc *goquery.Document, root *html.Node, raw string) string {
	for _, s := range strategies {
		if value := s.apply(doc, root, raw); value != "" {
			return value
		}
	}
	return ""
}

// Extractor turns product page HTML into models.Product values.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract parses body and pulls every product field it can find. The
// returned product always carries pageURL; unpopulated fields are omitted.
func (e *Extractor) Extract(body []byte, pageURL string) (*models.Product, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty document for %s", pageURL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document for %s: %w", pageURL, err)
	}
	root := doc.Get(0)
	raw := string(body)

	p := &models.Product{URL: pageURL}
	p.Name = firstMatch(nameStrategies, doc, root, raw)
	p.PageTitle = firstMatch(pageTitleStrategies, doc, root, raw)

	if value, ok := ParsePrice(firstMatch(originalPriceStrategies, doc, root, raw)); ok {
		p.OriginalPrice = &value
	}
	if value, ok := ParsePrice(firstMatch(salePriceStrategies, doc, root, raw)); ok {
		p.SalePrice = &value
	}

	discountText := firstMatch(discountStrategies, doc, root, raw)
	switch {
	case discountText != "":
		p.DiscountPercent = discountText
	case p.OriginalPrice != nil && p.SalePrice != nil:
		if pct := DeriveDiscount(*p.OriginalPrice, *p.SalePrice); pct > 0 {
			p.DiscountPercent = fmt.Sprintf("%d%% OFF", pct)
		}
	}
	if p.OriginalPrice != nil && p.SalePrice != nil {
		savings := *p.OriginalPrice - *p.SalePrice
		p.SavingsAmount = &savings
	}

	for _, attr := range productAttributes {
		*attr.dest(p) = firstMatch(attributeStrategies(attr.name), doc, root, raw)
	}

	p.Sizes = extractSizes(doc)
	p.Images = extractImages(doc, raw, pageURL)
	if len(p.Images) > 0 {
		p.MainImage = p.Images[0]
	}

	if p.Name == "" {
		e.logger.Warn("product name missing", "url", pageURL)
	}
	return p, nil
}

var pricePattern = regexp.MustCompile(`(?:₹|Rs\.?|INR)?\s*([\d,]+)`)

// ParsePrice extracts an integer rupee amount from price text such as
// "₹4,199" or "Rs 0". The bool reports whether a number was found.
func ParsePrice(text string) (int, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return value, true
}

// DeriveDiscount computes the rounded percentage discount of sale relative
// to original. It returns 0 when the inputs describe no discount.
func DeriveDiscount(original, sale int) int {
	if original <= 0 || sale >= original {
		return 0
	}
	return int(math.Round(float64(original-sale) / float64(original) * 100))
}

var sizeLabelSet = func() map[string]bool {
	set := make(map[string]bool, len(models.SizeLabels))
	for _, label := range models.SizeLabels {
		set[label] = true
	}
	return set
}()

// sizeVariantSuffix strips the measurement the storefront appends to some
// size labels, e.g. "XL-44" or "3XL-48".
var sizeVariantSuffix = regexp.MustCompile(`-\d+$`)

// extractSizes reads the size variant inputs. A size is unavailable when
// its input is disabled or sits under an inactive-option wrapper. Pages
// without size inputs yield nil so the field is omitted downstream.
func extractSizes(doc *goquery.Document) map[string]bool {
	var sizes map[string]bool
	doc.Find("input[name='Size']").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		label := strings.ToUpper(strings.TrimSpace(value))
		label = sizeVariantSuffix.ReplaceAllString(label, "")
		if !sizeLabelSet[label] {
			return
		}
		if sizes == nil {
			sizes = make(map[string]bool)
		}
		if _, seen := sizes[label]; seen {
			return
		}
		sizes[label] = sizeAvailable(s)
	})
	return sizes
}

func sizeAvailable(s *goquery.Selection) bool {
	if _, disabled := s.Attr("disabled"); disabled {
		return false
	}
	return s.ParentsFiltered(".inactive-option").Length() == 0
}

var (
	imageBlockPattern = regexp.MustCompile(`(?s)images\s*:\s*\[(.*?)\]`)
	imageURLPattern   = regexp.MustCompile(`"([^"]*\.(?:jpg|jpeg|png|webp)[^"]*?)"`)
)

// extractImages collects gallery image URLs, preferring the media array
// embedded in the page scripts and falling back to gallery img tags. URLs
// are normalized to absolute form and deduplicated in first-seen order.
func extractImages(doc *goquery.Document, raw, pageURL string) []string {
	var candidates []string
	if block := imageBlockPattern.FindStringSubmatch(raw); len(block) > 1 {
		for _, m := range imageURLPattern.FindAllStringSubmatch(block[1], -1) {
			candidates = append(candidates, m[1])
		}
	}
	if len(candidates) == 0 {
		doc.Find(".product-images img, img.product-image").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				candidates = append(candidates, src)
			}
		})
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	seen := make(map[string]bool, len(candidates))
	var images []string
	for _, candidate := range candidates {
		normalized := normalizeImageURL(candidate, base)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		images = append(images, normalized)
	}
	return images
}

func normalizeImageURL(candidate string, base *url.URL) string {
	candidate = strings.TrimSpace(strings.ReplaceAll(candidate, `\/`, "/"))
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}
