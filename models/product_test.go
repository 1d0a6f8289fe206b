package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "product path",
			url:  "https://thehouseofrare.com/products/ribbo-mens-shirt-blue",
			want: "ribbo-mens-shirt-blue",
		},
		{
			name: "trailing slash",
			url:  "https://thehouseofrare.com/products/ribbo/",
			want: "ribbo",
		},
		{
			name: "query string ignored",
			url:  "https://thehouseofrare.com/products/ribbo?variant=123",
			want: "ribbo",
		},
		{
			name: "unsafe characters sanitized",
			url:  "https://thehouseofrare.com/products/shirt%20(blue)",
			want: "shirt-blue",
		},
		{
			name: "no products segment falls back to last",
			url:  "https://thehouseofrare.com/pages/about",
			want: "about",
		},
		{
			name: "empty path",
			url:  "https://thehouseofrare.com/",
			want: "product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{URL: tt.url}
			if got := p.Handle(); got != tt.want {
				t.Fatalf("Handle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlattenOmitsAbsentFields(t *testing.T) {
	p := &Product{
		Name:      "RIBBO",
		URL:       "https://thehouseofrare.com/products/ribbo",
		SalePrice: intPtr(1679),
	}

	row := p.Flatten()
	want := map[string]string{
		"product_name": "RIBBO",
		"url":          "https://thehouseofrare.com/products/ribbo",
		"sale_price":   "1679",
	}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("Flatten() = %v, want %v", row, want)
	}
}

func TestFlattenSizesAndImages(t *testing.T) {
	p := &Product{
		URL:       "https://thehouseofrare.com/products/ribbo",
		Sizes:     map[string]bool{"S": true, "XL": false},
		Images:    []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		MainImage: "https://cdn.example.com/a.jpg",
	}

	row := p.Flatten()
	if got := row["S_available"]; got != "true" {
		t.Fatalf("S_available = %q, want %q", got, "true")
	}
	if got := row["XL_available"]; got != "false" {
		t.Fatalf("XL_available = %q, want %q", got, "false")
	}
	if _, ok := row["M_available"]; ok {
		t.Fatalf("M_available present for unoffered size: %v", row)
	}
	if got := row["total_images"]; got != "2" {
		t.Fatalf("total_images = %q, want %q", got, "2")
	}
	if got := row["main_image"]; got != "https://cdn.example.com/a.jpg" {
		t.Fatalf("main_image = %q, want first image", got)
	}
}

func TestCSVColumnsUnion(t *testing.T) {
	products := []*Product{
		{
			Name:          "First",
			URL:           "https://thehouseofrare.com/products/first",
			OriginalPrice: intPtr(4199),
			Fabric:        "COTTON",
		},
		{
			Name:      "Second",
			URL:       "https://thehouseofrare.com/products/second",
			SalePrice: intPtr(1679),
			Sizes:     map[string]bool{"M": true},
		},
	}

	got := CSVColumns(products)
	want := []string{
		"product_name", "url", "original_price", "sale_price",
		"fabric", "M_available",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CSVColumns() = %v, want %v", got, want)
	}
}

func TestCSVColumnsSizeOrdering(t *testing.T) {
	products := []*Product{
		{URL: "https://thehouseofrare.com/products/a", Sizes: map[string]bool{"XXL": true, "XS": false, "M": true}},
	}

	got := CSVColumns(products)
	want := []string{"url", "XS_available", "M_available", "XXL_available"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CSVColumns() = %v, want %v", got, want)
	}
}

func TestCSVColumnsEmpty(t *testing.T) {
	if got := CSVColumns(nil); len(got) != 0 {
		t.Fatalf("CSVColumns(nil) = %v, want empty", got)
	}
}

func TestProductJSONRoundTrip(t *testing.T) {
	p := &Product{
		Name:            "RIBBO MENS SHIRT",
		URL:             "https://thehouseofrare.com/products/ribbo",
		PageTitle:       "RIBBO MENS SHIRT - BLUE",
		OriginalPrice:   intPtr(4199),
		SalePrice:       intPtr(1679),
		DiscountPercent: "60% OFF",
		SavingsAmount:   intPtr(2520),
		Fabric:          "COTTON",
		Fit:             "SLIM FIT",
		Sizes:           map[string]bool{"S": true, "M": true, "XL": false},
		Images:          []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		MainImage:       "https://cdn.example.com/a.jpg",
		ScrapedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Product
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(&got, p) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", &got, p)
	}
}

func TestProductJSONOmitsEmpty(t *testing.T) {
	p := &Product{URL: "https://thehouseofrare.com/products/ribbo"}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"original_price", "sale_price", "sizes", "images", "product_name"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("key %q present in JSON for empty field: %s", key, data)
		}
	}
	if _, ok := raw["url"]; !ok {
		t.Fatalf("url missing from JSON: %s", data)
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(5, 4, 1, 6*time.Second)
	if s.TotalURLs != 5 || s.SuccessfulScrapes != 4 || s.FailedScrapes != 1 {
		t.Fatalf("counts = %d/%d/%d, want 5/4/1", s.TotalURLs, s.SuccessfulScrapes, s.FailedScrapes)
	}
	if s.SuccessRate != "80.0%" {
		t.Fatalf("SuccessRate = %q, want %q", s.SuccessRate, "80.0%")
	}
	if s.AverageTimePerProduct != "1.2s" {
		t.Fatalf("AverageTimePerProduct = %q, want %q", s.AverageTimePerProduct, "1.2s")
	}
}

func TestNewSummaryZeroTotal(t *testing.T) {
	s := NewSummary(0, 0, 0, 0)
	if s.SuccessRate != "0.0%" {
		t.Fatalf("SuccessRate = %q, want %q", s.SuccessRate, "0.0%")
	}
}
