// Package tab holds the in-memory state of one customer's running bill.
//
// A Tab is plain mutable state owned by a single editing session. It is not
// safe for concurrent use; callers that share a Tab across goroutines must
// serialize access themselves.
package tab

import (
	"errors"
	"fmt"

	"github.com/mmynk/tabkeeper/internal/calculator"
	"github.com/mmynk/tabkeeper/internal/models"
)

var (
	ErrIndexOutOfRange = errors.New("line item index out of range")
	ErrInvalidStatus   = errors.New("invalid line item status")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Tab is one customer's running bill.
// Total always equals the sum of the item prices.
type Tab struct {
	customerID string
	items      []models.LineItem
	total      float64
}

// New returns an empty tab for the given customer.
func New(customerID string) *Tab {
	return &Tab{customerID: customerID}
}

// FromItems returns a tab for the customer loaded with a copy of items.
func FromItems(customerID string, items []models.LineItem) *Tab {
	t := New(customerID)
	t.Load(items)
	return t
}

// CustomerID returns the ID of the customer that owns the tab.
func (t *Tab) CustomerID() string {
	return t.customerID
}

// AddItem appends a pending line item copied from product.
// Adding the same product twice yields two line items.
func (t *Tab) AddItem(product models.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("%w: %s costs %v", ErrInvalidPrice, product.ID, product.Price)
	}
	t.items = append(t.items, models.LineItem{
		ID:     product.ID,
		Name:   product.Name,
		Price:  product.Price,
		Status: models.StatusPending,
	})
	t.recompute()
	return nil
}

// RemoveItem removes the item at index, keeping the order of the rest.
// On error the tab is unchanged.
func (t *Tab) RemoveItem(index int) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	t.items = append(t.items[:index:index], t.items[index+1:]...)
	t.recompute()
	return nil
}

// SetStatus replaces the status of the item at index.
// Status changes never alter prices, so the total is left as is.
func (t *Tab) SetStatus(index int, status models.Status) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	t.items[index].Status = status
	return nil
}

// CheckItems reports the first item with a negative price.
func CheckItems(items []models.LineItem) error {
	for i, item := range items {
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d (%s) costs %v", ErrInvalidPrice, i, item.ID, item.Price)
		}
	}
	return nil
}

// Load replaces all items with a copy of items.
// Items without a known status are loaded as pending. Prices are not
// checked; see CheckItems.
func (t *Tab) Load(items []models.LineItem) {
	t.items = make([]models.LineItem, len(items))
	copy(t.items, items)
	for i := range t.items {
		if !t.items[i].Status.Valid() {
			t.items[i].Status = models.StatusPending
		}
	}
	t.recompute()
}

// Items returns a copy of the line items in insertion order.
func (t *Tab) Items() []models.LineItem {
	items := make([]models.LineItem, len(t.items))
	copy(items, t.items)
	return items
}

// Item returns the item at index.
func (t *Tab) Item(index int) (models.LineItem, error) {
	if err := t.checkIndex(index); err != nil {
		return models.LineItem{}, err
	}
	return t.items[index], nil
}

// Len returns the number of line items.
func (t *Tab) Len() int {
	return len(t.items)
}

// Total returns the sum of all item prices.
func (t *Tab) Total() float64 {
	return t.total
}

// Breakdown returns the total split by status.
func (t *Tab) Breakdown() calculator.Breakdown {
	return calculator.CalculateBreakdown(t.items)
}

// Payload returns the wire form of the full item list.
// Products is never nil so an empty tab serializes as an empty list.
func (t *Tab) Payload() models.TabPayload {
	return models.TabPayload{Products: t.Items()}
}

func (t *Tab) checkIndex(index int) error {
	if index < 0 || index >= len(t.items) {
		return fmt.Errorf("%w: %d (tab has %d items)", ErrIndexOutOfRange, index, len(t.items))
	}
	return nil
}

// recompute derives the total from scratch after every mutation.
func (t *Tab) recompute() {
	t.total = calculator.Sum(t.items)
}
