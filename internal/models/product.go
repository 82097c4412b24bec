package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a catalog entry. Catalog data is read-only reference data.
type Product struct {
	// ID is the backend-assigned identifier, compared as a string.
	ID string `json:"_id"`

	// Name is the product name shown on a tab.
	Name string `json:"productName"`

	// Description is free text shown in the catalog. May be empty.
	Description string `json:"productDescription,omitempty"`

	// Price is the unit price. Never negative.
	Price float64 `json:"productPrice"`

	// Image is the picture uploaded with the product, usually base64.
	// The client never looks inside it.
	Image string `json:"productImage,omitempty"`

	// Barcode is the code printed on the product, if any.
	Barcode string `json:"barcode,omitempty"`
}

// UnmarshalJSON reads both the catalog document shape
// (_id, productName, productPrice) and the short shape (id, itemName or
// name, price). IDs may be numbers and prices may be numeric strings.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                 json.RawMessage `json:"id"`
		DocumentID         json.RawMessage `json:"_id"`
		Name               string          `json:"name"`
		ItemName           string          `json:"itemName"`
		ProductName        string          `json:"productName"`
		Description        string          `json:"description"`
		ProductDescription string          `json:"productDescription"`
		Price              json.RawMessage `json:"price"`
		ProductPrice       json.RawMessage `json:"productPrice"`
		Image              string          `json:"image"`
		ProductImage       string          `json:"productImage"`
		Barcode            string          `json:"barcode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := flexString(raw.ID)
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	if id == "" {
		if id, err = flexString(raw.DocumentID); err != nil {
			return fmt.Errorf("product _id: %w", err)
		}
	}

	priceField := raw.ProductPrice
	if isAbsent(priceField) {
		priceField = raw.Price
	}
	price, err := flexFloat(priceField)
	if err != nil {
		return fmt.Errorf("product price: %w", err)
	}

	*p = Product{
		ID:          id,
		Name:        firstNonEmpty(raw.ProductName, raw.ItemName, raw.Name),
		Description: firstNonEmpty(raw.ProductDescription, raw.Description),
		Price:       price,
		Image:       firstNonEmpty(raw.ProductImage, raw.Image),
		Barcode:     raw.Barcode,
	}
	return nil
}

// NewProduct is the request body for adding a product to the catalog.
type NewProduct struct {
	Name        string  `json:"productName" validate:"required"`
	Description string  `json:"productDescription"`
	Price       float64 `json:"productPrice" validate:"gte=0"`
	Image       string  `json:"productImage"`
	Barcode     string  `json:"barcode,omitempty"`
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// flexString decodes a JSON string or number as a string.
func flexString(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("want a string or number, got %s", raw)
	}
	return n.String(), nil
}

// flexFloat decodes a JSON number or numeric string as a float64.
// An empty string is zero.
func flexFloat(raw json.RawMessage) (float64, error) {
	if isAbsent(raw) {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("want a number or numeric string, got %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return f, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
