package models

import "encoding/json"

// Customer is a person who can hold a running tab.
// Customers are created and deleted by the backend; the client only reads them.
type Customer struct {
	// ID is the backend-assigned identifier.
	ID string `json:"id"`

	// Name is the customer's display name. May be empty.
	Name string `json:"name"`

	// Username is the customer's account name. May be empty.
	Username string `json:"username"`
}

// UnmarshalJSON accepts both "id" and the backend's document key "_id".
func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	var raw struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Customer(raw.plain)
	if c.ID == "" {
		c.ID = raw.DocumentID
	}
	return nil
}

// Label returns the text shown when picking a customer.
func (c Customer) Label() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Username != "":
		return c.Username
	default:
		return "Unnamed Customer"
	}
}

// NewCustomer is the request body for creating a customer.
type NewCustomer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}
