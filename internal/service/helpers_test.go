package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/api/apitest"
	"github.com/mmynk/tabkeeper/internal/auth"
	"github.com/mmynk/tabkeeper/internal/middleware"
	"github.com/mmynk/tabkeeper/internal/storage"
)

// recorder is a SyncRecorder that counts calls per result.
type recorder struct {
	mu      sync.Mutex
	fetches map[string]int
	saves   map[string]int
	notify  map[string]int
}

func newRecorder() *recorder {
	return &recorder{fetches: map[string]int{}, saves: map[string]int{}, notify: map[string]int{}}
}

func (r *recorder) TabFetched(result string) { r.inc(r.fetches, result) }
func (r *recorder) TabSaved(result string)   { r.inc(r.saves, result) }
func (r *recorder) Notified(result string)   { r.inc(r.notify, result) }

func (r *recorder) inc(m map[string]int, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m[result]++
}

func (r *recorder) count(m map[string]int, result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return m[result]
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) GetToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", storage.ErrNotFound
	}
	return m.token, nil
}

func (m *memTokens) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) DeleteToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memTokens) saved() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func newClient(t *testing.T, backend *apitest.Backend, session middleware.TokenSource) *api.Client {
	t.Helper()
	client, err := api.New(api.Options{
		BaseURL: backend.URL(),
		Timeout: 5 * time.Second,
		Middleware: []middleware.Middleware{
			middleware.RequestID(),
			middleware.BearerAuth(session),
			middleware.Logging(),
		},
	})
	require.NoError(t, err)
	return client
}

func setupTabService(t *testing.T) (*TabService, *apitest.Backend, *recorder) {
	t.Helper()
	backend := apitest.New(t)
	rec := newRecorder()
	svc := NewTabService(newClient(t, backend, auth.NewSession()), TabServiceConfig{
		NotifyTimeout: 2 * time.Second,
		Metrics:       rec,
	})
	t.Cleanup(svc.Wait)
	return svc, backend, rec
}
