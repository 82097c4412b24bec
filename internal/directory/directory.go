// Package directory turns a selection (a picked customer, a picked product,
// a scanned barcode) into the domain values a tab needs.
//
// Lookups are linear scans. Catalogs hold tens to low hundreds of entries,
// so there is no index or cache.
package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/tabkeeper/internal/models"
)

var ErrNotFound = errors.New("not found")

// Option is one entry of a selection list.
type Option struct {
	Label string
	Value string
}

// ResolveCustomer returns the customer with the given ID.
func ResolveCustomer(customers []models.Customer, id string) (models.Customer, error) {
	for _, c := range customers {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, fmt.Errorf("customer %q: %w", id, ErrNotFound)
}

// ResolveProduct returns the catalog product with the given ID.
func ResolveProduct(catalog []models.Product, id string) (models.Product, error) {
	for _, p := range catalog {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %q: %w", id, ErrNotFound)
}

// ResolveBarcode resolves a scanned code. The scanner hands over an opaque
// string; it matches a product's barcode first, then its ID.
func ResolveBarcode(catalog []models.Product, code string) (models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Product{}, fmt.Errorf("empty barcode: %w", ErrNotFound)
	}
	for _, p := range catalog {
		if p.Barcode != "" && p.Barcode == code {
			return p, nil
		}
	}
	return ResolveProduct(catalog, code)
}

// CustomerOptions builds the customer picker entries in input order.
func CustomerOptions(customers []models.Customer) []Option {
	options := make([]Option, len(customers))
	for i, c := range customers {
		options[i] = Option{Label: c.Label(), Value: c.ID}
	}
	return options
}

// ProductOptions builds the product picker entries in input order.
func ProductOptions(catalog []models.Product) []Option {
	options := make([]Option, len(catalog))
	for i, p := range catalog {
		options[i] = Option{Label: p.Name, Value: p.ID}
	}
	return options
}
