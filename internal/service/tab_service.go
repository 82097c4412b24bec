// Package service holds the workflows built on the backend client: tab
// synchronization, the editing session of one tab, and the account, catalog
// and feedback operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/metrics"
	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/tab"
)

const (
	DefaultNotifyMessage = "Your tab has been updated!"
	DefaultNotifyTimeout = 10 * time.Second
)

// TabBackend is the part of the backend client the tab workflow needs.
// *api.Client implements it.
type TabBackend interface {
	GetTab(ctx context.Context, customerID string) (*models.TabPayload, error)
	SaveTab(ctx context.Context, customerID string, payload models.TabPayload) error
	Notify(ctx context.Context, customerID, message string) error
}

// SyncRecorder counts sync outcomes. *metrics.Metrics implements it.
type SyncRecorder interface {
	TabFetched(result string)
	TabSaved(result string)
	Notified(result string)
}

type nopRecorder struct{}

func (nopRecorder) TabFetched(string) {}
func (nopRecorder) TabSaved(string)   {}
func (nopRecorder) Notified(string)   {}

// FetchStatus is the outcome of a tab fetch.
type FetchStatus int

const (
	// FetchFound means the backend returned a stored tab.
	FetchFound FetchStatus = iota
	// FetchNotFound means the customer has no tab yet. Not an error.
	FetchNotFound
	// FetchFailed means the fetch failed; Err says why.
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchNotFound:
		return "not_found"
	case FetchFailed:
		return "failed"
	}
	return fmt.Sprintf("FetchStatus(%d)", int(s))
}

// FetchResult always carries a usable Tab, empty unless Status is FetchFound.
type FetchResult struct {
	Status FetchStatus
	Tab    *tab.Tab
	Err    error
}

// SaveState is the state of a save attempt: Idle -> Saving -> Saved|Failed.
type SaveState int32

const (
	SaveIdle SaveState = iota
	SaveSaving
	SaveSaved
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveFailed:
		return "failed"
	}
	return fmt.Sprintf("SaveState(%d)", int32(s))
}

// SaveResult is the terminal state of one save. Err is set when State is
// SaveFailed.
type SaveResult struct {
	State SaveState
	Err   error
}

// TabServiceConfig configures a TabService.
type TabServiceConfig struct {
	// NotifyMessage is sent to the customer after each save.
	// Default: DefaultNotifyMessage.
	NotifyMessage string

	// NotifyTimeout bounds each notification. Default: DefaultNotifyTimeout.
	NotifyTimeout time.Duration

	// Metrics receives sync outcomes. Optional.
	Metrics SyncRecorder
}

// TabService fetches and saves customer tabs.
//
// Notifications are attempted after every successful save in a detached
// goroutine; the result of a save says nothing about delivery.
type TabService struct {
	backend       TabBackend
	notifyMessage string
	notifyTimeout time.Duration
	metrics       SyncRecorder

	state   atomic.Int32
	pending sync.WaitGroup
}

// NewTabService creates a TabService.
func NewTabService(backend TabBackend, cfg TabServiceConfig) *TabService {
	if cfg.NotifyMessage == "" {
		cfg.NotifyMessage = DefaultNotifyMessage
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	return &TabService{
		backend:       backend,
		notifyMessage: cfg.NotifyMessage,
		notifyTimeout: cfg.NotifyTimeout,
		metrics:       cfg.Metrics,
	}
}

// FetchTab loads the stored tab of a customer.
func (s *TabService) FetchTab(ctx context.Context, customerID string) FetchResult {
	if customerID == "" {
		s.metrics.TabFetched(metrics.ResultFailed)
		return FetchResult{Status: FetchFailed, Tab: tab.New(""), Err: ErrMissingCustomer}
	}

	start := time.Now()
	payload, err := s.backend.GetTab(ctx, customerID)
	duration := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, api.ErrTabNotFound):
		slog.Debug("No existing tab", "customer_id", customerID, "duration_ms", duration)
		s.metrics.TabFetched(metrics.ResultNotFound)
		return FetchResult{Status: FetchNotFound, Tab: tab.New(customerID)}
	case err != nil:
		slog.Warn("Failed to fetch tab", "customer_id", customerID, "duration_ms", duration, "error", err)
		s.metrics.TabFetched(metrics.ResultFailed)
		return FetchResult{
			Status: FetchFailed,
			Tab:    tab.New(customerID),
			Err:    fmt.Errorf("failed to fetch tab of customer %s: %w", customerID, err),
		}
	}

	if err := tab.CheckItems(payload.Products); err != nil {
		slog.Warn("Rejecting fetched tab", "customer_id", customerID, "items_count", len(payload.Products), "error", err)
		s.metrics.TabFetched(metrics.ResultFailed)
		return FetchResult{
			Status: FetchFailed,
			Tab:    tab.New(customerID),
			Err:    fmt.Errorf("tab of customer %s holds an invalid item: %w", customerID, err),
		}
	}

	t := tab.FromItems(customerID, payload.Products)
	slog.Debug("Fetched tab",
		"customer_id", customerID,
		"items_count", t.Len(),
		"total", t.Total(),
		"duration_ms", duration,
	)
	s.metrics.TabFetched(metrics.ResultFound)
	return FetchResult{Status: FetchFound, Tab: t}
}

// SaveTab replaces the stored tab of a customer with the full item list of
// t, then notifies the customer in the background. The in-memory tab is
// never modified, whatever the outcome.
func (s *TabService) SaveTab(ctx context.Context, customerID string, t *tab.Tab) SaveResult {
	if customerID == "" {
		s.metrics.TabSaved(metrics.ResultFailed)
		return SaveResult{State: SaveFailed, Err: ErrMissingCustomer}
	}

	payload := models.TabPayload{Products: []models.LineItem{}}
	if t != nil {
		payload = t.Payload()
	}

	s.setState(SaveSaving)
	if err := s.backend.SaveTab(ctx, customerID, payload); err != nil {
		s.setState(SaveFailed)
		slog.Warn("Failed to save tab", "customer_id", customerID, "error", err)
		s.metrics.TabSaved(metrics.ResultFailed)
		return SaveResult{State: SaveFailed, Err: fmt.Errorf("failed to save tab of customer %s: %w", customerID, err)}
	}
	s.setState(SaveSaved)

	slog.Info("Tab saved", "customer_id", customerID, "items_count", len(payload.Products))
	s.metrics.TabSaved(metrics.ResultSaved)
	s.notifyDetached(ctx, customerID)
	return SaveResult{State: SaveSaved}
}

// State returns the state of the most recent save.
func (s *TabService) State() SaveState {
	return SaveState(s.state.Load())
}

// Wait blocks until every background notification has finished.
func (s *TabService) Wait() {
	s.pending.Wait()
}

func (s *TabService) setState(state SaveState) {
	s.state.Store(int32(state))
}

// notifyDetached sends the tab-updated notification. It keeps the values of
// ctx but not its cancellation, and has its own timeout.
func (s *TabService) notifyDetached(ctx context.Context, customerID string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.backend.Notify(ctx, customerID, s.notifyMessage); err != nil {
			slog.Warn("Notification not sent", "customer_id", customerID, "error", err)
			s.metrics.Notified(metrics.ResultFailed)
			return
		}
		slog.Debug("Notification sent", "customer_id", customerID)
		s.metrics.Notified(metrics.ResultSent)
	}()
}
