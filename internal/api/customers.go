package api

import (
	"context"

	"github.com/mmynk/tabkeeper/internal/models"
)

// ListCustomers returns every customer. GET /api/customers
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.get(ctx, "/api/customers", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// AddCustomer creates a customer. POST /api/customers
func (c *Client) AddCustomer(ctx context.Context, req models.NewCustomer) (*models.Customer, error) {
	var created models.Customer
	if err := c.post(ctx, "/api/customers", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
