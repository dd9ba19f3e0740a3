package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// productRecord is the on-disk product shape. "desc" is accepted as an
// alias for "description", and dateAdded may be a date or a timestamp.
type productRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Desc        string   `json:"desc"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"salePrice"`
	Stock       int      `json:"stock"`
	Rating      *float64 `json:"rating"`
	DateAdded   string   `json:"dateAdded"`
	Image       string   `json:"img"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Load reads a JSON array of products from r.
func Load(r io.Reader) (*Catalog, error) {
	var records []productRecord
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]Product, 0, len(records))
	for i, rec := range records {
		added, err := parseDate(rec.DateAdded)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, rec.ID, err)
		}

		description := rec.Description
		if description == "" {
			description = rec.Desc
		}

		products = append(products, Product{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: description,
			Category:    rec.Category,
			Price:       rec.Price,
			SalePrice:   rec.SalePrice,
			Stock:       rec.Stock,
			Rating:      rec.Rating,
			DateAdded:   added,
			Image:       rec.Image,
		})
	}

	return New(products)
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized dateAdded %q", s)
}
