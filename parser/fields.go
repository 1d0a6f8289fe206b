package parser

import (
	"fmt"
	"regexp"

	"github.com/gourish-mokashi/Scrape-Data/models"
)

// Strategy tables for the storefront's product pages. Ordering matters:
// earlier entries are the structured selectors, later ones the looser
// fallbacks used when the markup shifts.
var (
	scriptTitlePattern = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	anyRupeePattern    = regexp.MustCompile(`₹\s*([\d,]+)`)

	nameStrategies = []Strategy{
		{Selector: "h1.main-title span"},
		{XPath: `//h1[contains(@class,"main-title")]`},
		{Pattern: scriptTitlePattern},
	}

	pageTitleStrategies = []Strategy{
		{Selector: "title"},
	}

	originalPriceStrategies = []Strategy{
		{Selector: "div.compare-price-wrapper span.compare-price"},
		{Selector: "span.compare-price"},
	}

	salePriceStrategies = []Strategy{
		{Selector: "div.regular-price-wrapper span.regular-price"},
		{Selector: "span.regular-price"},
		{Pattern: anyRupeePattern},
	}

	discountStrategies = []Strategy{
		{Selector: "span.perc_price"},
		{XPath: `//span[contains(@class,"perc_price")]`},
	}
)

// productAttributes maps the hidden attribute inputs on a product page to
// their destination fields.
var productAttributes = []struct {
	name string
	dest func(*models.Product) *string
}{
	{"fabric", func(p *models.Product) *string { return &p.Fabric }},
	{"fit", func(p *models.Product) *string { return &p.Fit }},
	{"closure", func(p *models.Product) *string { return &p.Closure }},
	{"collar", func(p *models.Product) *string { return &p.Collar }},
	{"sleeve", func(p *models.Product) *string { return &p.Sleeve }},
	{"pattern", func(p *models.Product) *string { return &p.Pattern }},
	{"occasion", func(p *models.Product) *string { return &p.Occasion }},
}

func attributeStrategies(name string) []Strategy {
	return []Strategy{
		{Selector: fmt.Sprintf("input[name=%q]", name), Attr: "value"},
		{Selector: fmt.Sprintf("[data-attribute=%q] .attr-value", name)},
	}
}
