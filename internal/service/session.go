package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/tabkeeper/internal/directory"
	"github.com/mmynk/tabkeeper/internal/metrics"
	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/tab"
)

// Session is the editing session of the currently selected customer's tab.
//
// Each SelectCustomer bumps a generation counter; a fetch that completes
// after a newer selection is discarded. Until the current selection's fetch
// completes, edits and saves fail with ErrFetchInProgress. The mutex only
// keeps a fetch finishing on another goroutine from corrupting state, it
// does not order concurrent edits.
type Session struct {
	tabs *TabService

	mu         sync.Mutex
	generation uint64
	customer   *models.Customer
	tab        *tab.Tab
	existing   bool
	fetching   bool
}

// NewSession returns a session with no customer selected.
func NewSession(tabs *TabService) *Session {
	return &Session{tabs: tabs}
}

// SelectCustomer makes id the current customer and loads their tab.
//
// The returned error is a resolve failure or ErrStaleResponse; a failed
// fetch is reported in FetchResult.Err and leaves an empty tab selected.
func (s *Session) SelectCustomer(ctx context.Context, customers []models.Customer, id string) (FetchResult, error) {
	customer, err := directory.ResolveCustomer(customers, id)
	if err != nil {
		return FetchResult{}, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.customer = &customer
	s.tab = tab.New(customer.ID)
	s.existing = false
	s.fetching = true
	s.mu.Unlock()

	result := s.tabs.FetchTab(ctx, customer.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		slog.Debug("Discarding stale tab fetch", "customer_id", customer.ID, "generation", gen, "current", s.generation)
		s.tabs.metrics.TabFetched(metrics.ResultStale)
		return result, ErrStaleResponse
	}
	s.tab = result.Tab
	s.existing = result.Status == FetchFound
	s.fetching = false
	return result, nil
}

// Customer returns the selected customer.
func (s *Session) Customer() (models.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return models.Customer{}, false
	}
	return *s.customer, true
}

// Existing reports whether the selected customer's tab was already stored
// on the backend.
func (s *Session) Existing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing
}

// Heading returns the title shown above the tab.
func (s *Session) Heading() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return ""
	}
	if s.existing {
		return "Existing Tab for: " + s.customer.Label()
	}
	return "Creating New Tab for: " + s.customer.Label()
}

// Items returns a copy of the line items of the selected tab.
func (s *Session) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tab == nil {
		return []models.LineItem{}
	}
	return s.tab.Items()
}

// Total returns the total of the selected tab.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tab == nil {
		return 0
	}
	return s.tab.Total()
}

// Snapshot returns an independent copy of the selected tab.
func (s *Session) Snapshot() (*tab.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tab == nil {
		return nil, ErrNoCustomerSelected
	}
	return tab.FromItems(s.tab.CustomerID(), s.tab.Items()), nil
}

// AddProduct adds the catalog product with the given ID.
func (s *Session) AddProduct(catalog []models.Product, productID string) (models.Product, error) {
	product, err := directory.ResolveProduct(catalog, productID)
	if err != nil {
		return models.Product{}, err
	}
	return product, s.add(product)
}

// AddScanned adds the product whose barcode was scanned.
func (s *Session) AddScanned(catalog []models.Product, code string) (models.Product, error) {
	product, err := directory.ResolveBarcode(catalog, code)
	if err != nil {
		return models.Product{}, err
	}
	return product, s.add(product)
}

func (s *Session) add(product models.Product) error {
	return s.edit(func(t *tab.Tab) error {
		return t.AddItem(product)
	})
}

// RemoveItem removes the line item at index.
func (s *Session) RemoveItem(index int) error {
	return s.edit(func(t *tab.Tab) error {
		return t.RemoveItem(index)
	})
}

// SetStatus changes the status of the line item at index.
func (s *Session) SetStatus(index int, status models.Status) error {
	return s.edit(func(t *tab.Tab) error {
		return t.SetStatus(index, status)
	})
}

func (s *Session) edit(fn func(*tab.Tab) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil || s.tab == nil {
		return ErrNoCustomerSelected
	}
	if s.fetching {
		return ErrFetchInProgress
	}
	return fn(s.tab)
}

// Save persists the selected tab. The lock is not held during the request,
// so edits made while a save is in flight are not part of it.
func (s *Session) Save(ctx context.Context) SaveResult {
	s.mu.Lock()
	if s.customer == nil || s.tab == nil {
		s.mu.Unlock()
		return SaveResult{State: SaveFailed, Err: ErrNoCustomerSelected}
	}
	if s.fetching {
		s.mu.Unlock()
		return SaveResult{State: SaveFailed, Err: ErrFetchInProgress}
	}
	customerID := s.customer.ID
	snapshot := tab.FromItems(customerID, s.tab.Items())
	s.mu.Unlock()

	result := s.tabs.SaveTab(ctx, customerID, snapshot)
	if result.State == SaveSaved {
		s.mu.Lock()
		if s.customer != nil && s.customer.ID == customerID {
			s.existing = true
		}
		s.mu.Unlock()
	}
	return result
}
