package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mmynk/tabkeeper/internal/models"
)

func (b *Backend) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.record, b.inject)

	r.HandleFunc("/api/customers", b.listCustomers).Methods(http.MethodGet)
	r.HandleFunc("/api/customers", b.addCustomer).Methods(http.MethodPost)
	r.HandleFunc("/api/tabs/{customerId}", b.getTab).Methods(http.MethodGet)
	r.HandleFunc("/api/tabs/{customerId}", b.saveTab).Methods(http.MethodPost)
	r.HandleFunc("/api/notify/{customerId}", b.notify).Methods(http.MethodPost)
	r.HandleFunc("/api/products", b.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/addProduct", b.addProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/login", b.login).Methods(http.MethodPost)
	r.HandleFunc("/api/register", b.register).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", b.logout).Methods(http.MethodPost)
	r.HandleFunc("/api/users/resetPassword", b.resetPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/users/adminAccess", b.checkAdmin).Methods(http.MethodPost)
	r.HandleFunc("/api/users/adminAccess", b.grantAdmin).Methods(http.MethodPut)
	r.HandleFunc("/api/users/user", b.currentUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", b.getUser).Methods(http.MethodGet)
	r.HandleFunc("/api/feedback", b.submitFeedback).Methods(http.MethodPost)
	return r
}

// record stores the request and gives handlers a re-readable body.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// inject applies Hold gates and Fail responses.
func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		g := b.gates[key]
		f, failing := b.failures[key]
		b.mu.Unlock()

		if g != nil {
			g.once.Do(func() { close(g.arrived) })
			select {
			case <-g.release:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (b *Backend) listCustomers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	customers := b.customers
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (b *Backend) addCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.NewCustomer
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "name and email are required")
		return
	}
	c := models.Customer{ID: uuid.NewString(), Name: req.Name}
	b.mu.Lock()
	b.customers = append(b.customers, c)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) getTab(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["customerId"]

	b.mu.Lock()
	raw, hasRaw := b.rawTabs[id]
	items, ok := b.tabs[id]
	b.mu.Unlock()

	switch {
	case hasRaw:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, raw)
	case !ok:
		writeMessage(w, http.StatusNotFound, "Tab not found")
	default:
		writeJSON(w, http.StatusOK, models.TabPayload{Products: items})
	}
}

func (b *Backend) saveTab(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["customerId"]
	var payload models.TabPayload
	if !decode(w, r, &payload) {
		return
	}
	if payload.Products == nil {
		writeMessage(w, http.StatusBadRequest, "products list is required")
		return
	}
	b.mu.Lock()
	b.tabs[id] = payload.Products
	delete(b.rawTabs, id)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tab saved"})
}

func (b *Backend) notify(w http.ResponseWriter, r *http.Request) {
	var n models.Notification
	if !decode(w, r, &n) {
		return
	}
	b.mu.Lock()
	b.notices = append(b.notices, Notice{CustomerID: mux.Vars(r)["customerId"], Message: n.Message})
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// listProducts answers with catalog documents: _id, productName,
// productPrice and so on.
func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.catalog != nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, *b.catalog)
		return
	}
	products := b.products
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (b *Backend) addProduct(w http.ResponseWriter, r *http.Request) {
	var req models.NewProduct
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "productName is required")
		return
	}
	p := models.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Barcode:     req.Barcode,
	}
	b.mu.Lock()
	b.products = append(b.products, p)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}

	b.mu.Lock()
	acc, ok := b.accounts[creds.Username]
	b.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such user"})
		return
	case acc.password != creds.Password:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "wrong password"})
		return
	}

	token, err := IssueToken(acc.user, time.Hour)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	b.mu.Lock()
	b.tokens[token] = acc.user.Username
	b.mu.Unlock()

	user := acc.user
	http.SetCookie(w, &http.Cookie{Name: "session", Value: uuid.NewString(), Path: "/"})
	writeJSON(w, http.StatusOK, models.LoginResult{Token: token, User: &user})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg) {
		return
	}
	b.mu.Lock()
	_, exists := b.accounts[reg.Username]
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already taken"})
		return
	}
	b.AddUser(models.User{Username: reg.Username, Email: reg.Email, MobileNumber: reg.MobileNumber}, reg.Password)
	writeMessage(w, http.StatusCreated, "You have successfully registered!")
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	delete(b.tokens, bearer(r))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordReset
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.Email == req.Email {
			acc.password = req.NewPassword
			writeMessage(w, http.StatusOK, "Password updated")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "No account with that email")
}

func (b *Backend) checkAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminAccess
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	acc, ok := b.accounts[req.Username]
	b.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, models.AdminAccess{Username: req.Username, IsAdmin: acc.user.IsAdmin})
}

func (b *Backend) grantAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminAccess
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[req.Username]
	if !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	acc.user.IsAdmin = req.IsAdmin
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) currentUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	username, ok := b.tokens[bearer(r)]
	var acc *account
	if ok {
		acc = b.accounts[username]
	}
	b.mu.Unlock()
	if acc == nil {
		writeMessage(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == id {
			// The real backend keys documents by _id.
			writeJSON(w, http.StatusOK, map[string]any{
				"_id":      acc.user.ID,
				"username": acc.user.Username,
				"email":    acc.user.Email,
				"isAdmin":  acc.user.IsAdmin,
			})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "User not found")
}

func (b *Backend) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var fb models.Feedback
	if !decode(w, r, &fb) {
		return
	}
	b.mu.Lock()
	b.feedback = append(b.feedback, fb)
	b.mu.Unlock()
	writeMessage(w, http.StatusCreated, "Thanks for the feedback")
}
