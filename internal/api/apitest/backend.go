// Package apitest runs an in-memory fake of the storefront REST backend for
// tests. It records every request and can inject failures or hold requests
// until the test releases them.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmynk/tabkeeper/internal/auth"
	"github.com/mmynk/tabkeeper/internal/models"
)

var signingKey = []byte("apitest-secret")

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Notice is a recorded notification.
type Notice struct {
	CustomerID string
	Message    string
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	body   string
}

type gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Backend is the fake server.
type Backend struct {
	mu        sync.Mutex
	customers []models.Customer
	products  []models.Product
	catalog   *string
	tabs      map[string][]models.LineItem
	rawTabs   map[string]string
	notices   []Notice
	accounts  map[string]*account
	tokens    map[string]string
	feedback  []models.Feedback
	requests  []Request
	failures  map[string]failure
	gates     map[string]*gate

	server *httptest.Server
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		tabs:     make(map[string][]models.LineItem),
		rawTabs:  make(map[string]string),
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		failures: make(map[string]failure),
		gates:    make(map[string]*gate),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(func() {
		b.releaseAll()
		b.server.Close()
	})
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string {
	return b.server.URL
}

// AddCustomers seeds customers.
func (b *Backend) AddCustomers(customers ...models.Customer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers = append(b.customers, customers...)
}

// AddProducts seeds the catalog.
func (b *Backend) AddProducts(products ...models.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = append(b.products, products...)
}

// SetRawProducts makes GET /api/products answer 200 with body as is.
func (b *Backend) SetRawProducts(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog = &body
}

// SetTab stores a tab for a customer.
func (b *Backend) SetTab(customerID string, items []models.LineItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabs[customerID] = items
}

// SetRawTab makes GET /api/tabs/{customerID} answer 200 with body as is.
func (b *Backend) SetRawTab(customerID, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawTabs[customerID] = body
}

// Tab returns the stored tab of a customer.
func (b *Backend) Tab(customerID string) ([]models.LineItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items, ok := b.tabs[customerID]
	return items, ok
}

// AddUser creates an account.
func (b *Backend) AddUser(user models.User, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	b.accounts[user.Username] = &account{user: user, password: password}
}

// User returns an account by username.
func (b *Backend) User(username string) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[username]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

// Notices returns the notifications received so far.
func (b *Backend) Notices() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice(nil), b.notices...)
}

// Feedback returns the feedback received so far.
func (b *Backend) Feedback() []models.Feedback {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Feedback(nil), b.feedback...)
}

// Requests returns every recorded request in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestsTo returns the recorded requests for one method and path.
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Fail makes every request to method and path answer status with body.
// An empty body sends no content.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, body: body}
}

// ClearFailures removes all injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// Hold blocks the next requests to method and path until release is called.
// arrived is closed when the first such request reaches the server.
func (b *Backend) Hold(method, path string) (arrived <-chan struct{}, release func()) {
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	b.gates[method+" "+path] = g
	b.mu.Unlock()
	return g.arrived, func() {
		b.mu.Lock()
		if b.gates[method+" "+path] == g {
			delete(b.gates, method+" "+path)
		}
		b.mu.Unlock()
		close(g.release)
	}
}

func (b *Backend) releaseAll() {
	b.mu.Lock()
	gates := b.gates
	b.gates = make(map[string]*gate)
	b.mu.Unlock()
	for _, g := range gates {
		close(g.release)
	}
}

// IssueToken signs a session token like the real backend does.
func IssueToken(user models.User, ttl time.Duration) (string, error) {
	claims := auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func bearer(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}
