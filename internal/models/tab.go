package models

import "fmt"

// Status is the settlement state of a single line item.
type Status string

const (
	// StatusPending means the item is not settled yet.
	StatusPending Status = "pending"
	// StatusPaid means the item is fully settled.
	StatusPaid Status = "paid"
	// StatusCredit means the item is deferred and owed.
	StatusCredit Status = "credit"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusPending, StatusPaid, StatusCredit}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCredit:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// LineItem is one product instance placed on a tab.
type LineItem struct {
	// ID is the ID of the product the item was copied from.
	ID string `json:"id"`

	// Name is the product name at the time the item was added.
	Name string `json:"name"`

	// Price is the product price at the time the item was added.
	Price float64 `json:"price"`

	// Status is the item's own settlement state.
	Status Status `json:"status"`
}

// TabPayload is the body of GET and POST /api/tabs/{customerId}.
// A nil Products slice after decoding means the backend sent no list at all,
// which is different from an empty list.
type TabPayload struct {
	Products []LineItem `json:"products"`
}

// Notification is the body of POST /api/notify/{customerId}.
type Notification struct {
	Message string `json:"message"`
}
