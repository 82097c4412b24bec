package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmynk/tabkeeper/internal/models"
)

// GetTab returns the stored tab of a customer. GET /api/tabs/{customerId}
//
// A 404, an empty or null body, and a body without a products list all mean
// the customer has no tab yet and return ErrTabNotFound.
func (c *Client) GetTab(ctx context.Context, customerID string) (*models.TabPayload, error) {
	path := "/api/tabs/" + segment(customerID)
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("customer %s: %w", customerID, ErrTabNotFound)
		}
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrTabNotFound)
	}

	var payload models.TabPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding tab of customer %s: %w", customerID, err)
	}
	if payload.Products == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrTabNotFound)
	}
	return &payload, nil
}

// SaveTab replaces the stored tab of a customer. POST /api/tabs/{customerId}
func (c *Client) SaveTab(ctx context.Context, customerID string, payload models.TabPayload) error {
	if payload.Products == nil {
		payload.Products = []models.LineItem{}
	}
	return c.post(ctx, "/api/tabs/"+segment(customerID), payload, nil)
}

// Notify sends a message to a customer. POST /api/notify/{customerId}
func (c *Client) Notify(ctx context.Context, customerID, message string) error {
	return c.post(ctx, "/api/notify/"+segment(customerID), models.Notification{Message: message}, nil)
}
