package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tabkeeper/internal/models"
)

// FeaturedCount is how many products the home screen shows.
const FeaturedCount = 6

// CatalogBackend is the part of the backend client used for customers and
// products. *api.Client implements it.
type CatalogBackend interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	AddCustomer(ctx context.Context, req models.NewCustomer) (*models.Customer, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, req models.NewProduct) error
}

// CatalogService reads and extends the customer list and product catalog.
type CatalogService struct {
	backend CatalogBackend
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(backend CatalogBackend) *CatalogService {
	return &CatalogService{backend: backend}
}

// ListCustomers returns every customer.
func (s *CatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.backend.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// AddCustomer creates a customer.
func (s *CatalogService) AddCustomer(ctx context.Context, name, email, phone string) (*models.Customer, error) {
	req := models.NewCustomer{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	customer, err := s.backend.AddCustomer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add customer: %w", err)
	}
	slog.Info("Customer added", "customer_id", customer.ID, "name", req.Name)
	return customer, nil
}

// ListProducts returns the whole catalog.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Featured returns the first n products of the catalog. n <= 0 means
// FeaturedCount.
func (s *CatalogService) Featured(ctx context.Context, n int) ([]models.Product, error) {
	if n <= 0 {
		n = FeaturedCount
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > n {
		products = products[:n]
	}
	return products, nil
}

// AddProduct adds a catalog entry. The image is passed through untouched.
func (s *CatalogService) AddProduct(ctx context.Context, req models.NewProduct) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Barcode = strings.TrimSpace(req.Barcode)
	if err := validateInput(req); err != nil {
		return err
	}
	if err := s.backend.AddProduct(ctx, req); err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}
	slog.Info("Product added", "name", req.Name, "price", req.Price)
	return nil
}
