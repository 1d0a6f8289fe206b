package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gourish-mokashi/Scrape-Data/models"
)

// OutputWriter defines the interface for combined output files.
type OutputWriter interface {
	Write(products []*models.Product) error
	Close() error
	Validate() error
}

// CSVWriter collects products and renders them as one CSV file on Close.
// Rows are buffered because the header is the union of the fields seen
// across all products, which is only known at the end of the run.
type CSVWriter struct {
	filename string

	mu       sync.Mutex
	products []*models.Product
	closed   bool
}

// NewCSVWriter initialises a CSV writer targeting filename.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	return &CSVWriter{filename: filename}, nil
}

// Write buffers products for the final CSV render.
func (cw *CSVWriter) Write(products []*models.Product) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return fmt.Errorf("csv writer already closed")
	}
	cw.products = append(cw.products, products...)
	return nil
}

// Close renders the buffered products and writes the file. Cells for
// fields a product does not carry are left empty.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.closed {
		return nil
	}
	cw.closed = true

	f, err := os.Create(cw.filename)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	writer := csv.NewWriter(f)

	columns := models.CSVColumns(cw.products)
	if len(columns) > 0 {
		if err := writer.Write(columns); err != nil {
			f.Close()
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, product := range cw.products {
		if product == nil {
			continue
		}
		row := product.Flatten()
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = row[column]
		}
		if err := writer.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv records: %w", err)
	}
	return f.Close()
}

// Validate ensures the rendered file has content.
func (cw *CSVWriter) Validate() error {
	info, err := os.Stat(cw.filename)
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter collects products and renders them as one indented JSON
// array on Close.
type JSONWriter struct {
	filename string

	mu       sync.Mutex
	products []*models.Product
	closed   bool
}

// NewJSONWriter initialises a JSON writer targeting filename.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	return &JSONWriter{filename: filename}, nil
}

// Write buffers products for the final JSON render.
func (jw *JSONWriter) Write(products []*models.Product) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return fmt.Errorf("json writer already closed")
	}
	jw.products = append(jw.products, products...)
	return nil
}

// Close renders the buffered products as a JSON array. Empty runs still
// produce a valid empty array.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return nil
	}
	jw.closed = true

	products := jw.products
	if products == nil {
		products = []*models.Product{}
	}

	f, err := os.Create(jw.filename)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(products); err != nil {
		f.Close()
		return fmt.Errorf("encode json array: %w", err)
	}
	return f.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := os.Stat(jw.filename)
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// WriteURLList writes urls as a single-column CSV under a "Product URL"
// header, the layout expected by spreadsheet imports.
func WriteURLList(filename string, urls []string) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create url list: %w", err)
	}
	writer := csv.NewWriter(f)
	if err := writer.Write([]string{"Product URL"}); err != nil {
		f.Close()
		return fmt.Errorf("write url list header: %w", err)
	}
	for _, u := range urls {
		if err := writer.Write([]string{u}); err != nil {
			f.Close()
			return fmt.Errorf("write url record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush url list: %w", err)
	}
	return f.Close()
}

func writeJSON(filename string, v any) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(filename), err)
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(filename), err)
	}
	return f.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
