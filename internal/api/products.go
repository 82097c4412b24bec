package api

import (
	"context"

	"github.com/mmynk/tabkeeper/internal/models"
)

// ListProducts returns the whole catalog. GET /api/products
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddProduct adds a catalog entry. POST /api/products/addProduct
func (c *Client) AddProduct(ctx context.Context, req models.NewProduct) error {
	return c.post(ctx, "/api/products/addProduct", req, nil)
}
