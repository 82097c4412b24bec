package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/api/apitest"
	"github.com/mmynk/tabkeeper/internal/metrics"
	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/tab"
)

func TestFetchTab_Found(t *testing.T) {
	svc, backend, rec := setupTabService(t)
	backend.SetTab("c1", []models.LineItem{
		{ID: "p1", Name: "Cola", Price: 2.5, Status: models.StatusPending},
		{ID: "p2", Name: "Chips", Price: 3.0, Status: models.StatusCredit},
	})

	result := svc.FetchTab(context.Background(), "c1")
	require.NoError(t, result.Err)
	assert.Equal(t, FetchFound, result.Status)
	assert.Equal(t, "c1", result.Tab.CustomerID())
	assert.Equal(t, 2, result.Tab.Len())
	assert.Equal(t, 5.5, result.Tab.Total())
	assert.Equal(t, 1, rec.count(rec.fetches, metrics.ResultFound))
}

func TestFetchTab_NotFoundIsEmptyTab(t *testing.T) {
	svc, _, rec := setupTabService(t)

	result := svc.FetchTab(context.Background(), "cust-404")
	assert.Equal(t, FetchNotFound, result.Status)
	assert.NoError(t, result.Err)
	require.NotNil(t, result.Tab)
	assert.Equal(t, 0, result.Tab.Len())
	assert.Equal(t, 0.0, result.Tab.Total())
	assert.Equal(t, 1, rec.count(rec.fetches, metrics.ResultNotFound))
}

func TestFetchTab_EmptyBodyIsNotFound(t *testing.T) {
	svc, backend, _ := setupTabService(t)
	backend.SetRawTab("c1", "")

	result := svc.FetchTab(context.Background(), "c1")
	assert.Equal(t, FetchNotFound, result.Status)
	assert.NoError(t, result.Err)
}

func TestFetchTab_Failed(t *testing.T) {
	svc, backend, rec := setupTabService(t)
	backend.Fail(http.MethodGet, "/api/tabs/c1", http.StatusInternalServerError, `{"message":"database unavailable"}`)

	result := svc.FetchTab(context.Background(), "c1")
	assert.Equal(t, FetchFailed, result.Status)
	require.Error(t, result.Err)
	require.NotNil(t, result.Tab)
	assert.Equal(t, 0, result.Tab.Len())
	assert.Equal(t, "database unavailable", UserMessage(result.Err))
	assert.Equal(t, 1, rec.count(rec.fetches, metrics.ResultFailed))
}

func TestFetchTab_NegativePriceFails(t *testing.T) {
	svc, backend, rec := setupTabService(t)
	backend.SetTab("c1", []models.LineItem{
		{ID: "p1", Name: "Cola", Price: 2.5, Status: models.StatusPending},
		{ID: "p2", Name: "Refund", Price: -1, Status: models.StatusPaid},
	})

	result := svc.FetchTab(context.Background(), "c1")
	assert.Equal(t, FetchFailed, result.Status)
	assert.ErrorIs(t, result.Err, tab.ErrInvalidPrice)
	require.NotNil(t, result.Tab)
	assert.Equal(t, 0, result.Tab.Len())
	assert.Equal(t, tab.ErrInvalidPrice.Error(), UserMessage(result.Err))
	assert.Equal(t, 1, rec.count(rec.fetches, metrics.ResultFailed))
}

func TestFetchTab_MissingCustomer(t *testing.T) {
	svc, backend, _ := setupTabService(t)

	result := svc.FetchTab(context.Background(), "")
	assert.Equal(t, FetchFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrMissingCustomer)
	assert.NotNil(t, result.Tab)
	assert.Empty(t, backend.Requests())
}

func TestSaveTab_MissingCustomer(t *testing.T) {
	svc, backend, _ := setupTabService(t)

	tb := tab.New("")
	require.NoError(t, tb.AddItem(models.Product{ID: "p1", Name: "Cola", Price: 2.5}))

	result := svc.SaveTab(context.Background(), "", tb)
	assert.Equal(t, SaveFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrMissingCustomer)
	assert.Empty(t, backend.Requests())
}

func TestSaveTab_SavesFullListAndNotifies(t *testing.T) {
	svc, backend, rec := setupTabService(t)

	tb := tab.New("c1")
	require.NoError(t, tb.AddItem(models.Product{ID: "p1", Name: "Cola", Price: 2.5}))
	require.NoError(t, tb.AddItem(models.Product{ID: "p2", Name: "Chips", Price: 3.0}))
	require.NoError(t, tb.SetStatus(1, models.StatusPaid))

	result := svc.SaveTab(context.Background(), "c1", tb)
	require.NoError(t, result.Err)
	assert.Equal(t, SaveSaved, result.State)
	assert.Equal(t, SaveSaved, svc.State())

	stored, ok := backend.Tab("c1")
	require.True(t, ok)
	assert.Equal(t, tb.Items(), stored)

	svc.Wait()
	assert.Equal(t, []apitest.Notice{{CustomerID: "c1", Message: DefaultNotifyMessage}}, backend.Notices())
	assert.Equal(t, 1, rec.count(rec.saves, metrics.ResultSaved))
	assert.Equal(t, 1, rec.count(rec.notify, metrics.ResultSent))
}

func TestSaveTab_EmptyTabSendsEmptyList(t *testing.T) {
	svc, backend, _ := setupTabService(t)

	result := svc.SaveTab(context.Background(), "c1", tab.New("c1"))
	require.Equal(t, SaveSaved, result.State)

	reqs := backend.RequestsTo(http.MethodPost, "/api/tabs/c1")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"products":[]}`, string(reqs[0].Body))
}

func TestSaveTab_NotifyFailureDoesNotAffectSave(t *testing.T) {
	svc, backend, rec := setupTabService(t)
	backend.Fail(http.MethodPost, "/api/notify/c1", http.StatusBadGateway, "upstream down")

	result := svc.SaveTab(context.Background(), "c1", tab.New("c1"))
	assert.Equal(t, SaveSaved, result.State)
	assert.NoError(t, result.Err)

	svc.Wait()
	assert.Equal(t, SaveSaved, svc.State())
	assert.Equal(t, 1, rec.count(rec.notify, metrics.ResultFailed))
	assert.Equal(t, 0, rec.count(rec.saves, metrics.ResultFailed))
}

func TestSaveTab_NotifyOutlivesCallerContext(t *testing.T) {
	svc, backend, _ := setupTabService(t)
	arrived, release := backend.Hold(http.MethodPost, "/api/notify/c1")

	ctx, cancel := context.WithCancel(context.Background())
	result := svc.SaveTab(ctx, "c1", tab.New("c1"))
	require.Equal(t, SaveSaved, result.State)

	<-arrived
	cancel()
	release()
	svc.Wait()

	assert.Len(t, backend.Notices(), 1)
}

func TestSaveTab_CustomNotifyMessage(t *testing.T) {
	backend := apitest.New(t)
	svc := NewTabService(newClient(t, backend, nil), TabServiceConfig{NotifyMessage: "Tab changed"})

	require.Equal(t, SaveSaved, svc.SaveTab(context.Background(), "c1", tab.New("c1")).State)
	svc.Wait()
	assert.Equal(t, "Tab changed", backend.Notices()[0].Message)
}

func TestSaveTab_FailureSurfacesMessage(t *testing.T) {
	svc, backend, rec := setupTabService(t)
	backend.Fail(http.MethodPost, "/api/tabs/c1", http.StatusBadRequest, `{"message":"Products are required"}`)

	tb := tab.New("c1")
	require.NoError(t, tb.AddItem(models.Product{ID: "p1", Name: "Cola", Price: 2.5}))

	result := svc.SaveTab(context.Background(), "c1", tb)
	assert.Equal(t, SaveFailed, result.State)
	assert.Equal(t, SaveFailed, svc.State())
	assert.Equal(t, "Products are required", UserMessage(result.Err))
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(result.Err))

	// No rollback and no notification.
	assert.Equal(t, 1, tb.Len())
	svc.Wait()
	assert.Empty(t, backend.Notices())
	assert.Equal(t, 1, rec.count(rec.saves, metrics.ResultFailed))
	assert.Len(t, backend.RequestsTo(http.MethodPost, "/api/tabs/c1"), 1)
}

func TestSaveTab_StateWhileInFlight(t *testing.T) {
	svc, backend, _ := setupTabService(t)
	assert.Equal(t, SaveIdle, svc.State())

	arrived, release := backend.Hold(http.MethodPost, "/api/tabs/c1")
	done := make(chan SaveResult, 1)
	go func() {
		done <- svc.SaveTab(context.Background(), "c1", tab.New("c1"))
	}()

	<-arrived
	assert.Equal(t, SaveSaving, svc.State())
	release()

	result := <-done
	assert.Equal(t, SaveSaved, result.State)
}

func TestSaveTab_NetworkFailure(t *testing.T) {
	backend := apitest.New(t)
	client := newClient(t, backend, nil)
	svc := NewTabService(client, TabServiceConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := svc.SaveTab(ctx, "c1", tab.New("c1"))
	assert.Equal(t, SaveFailed, result.State)

	var ne *api.NetworkError
	assert.True(t, errors.As(result.Err, &ne))
	assert.Equal(t, api.GenericMessage, UserMessage(result.Err))
}

func TestStates_String(t *testing.T) {
	assert.Equal(t, "idle", SaveIdle.String())
	assert.Equal(t, "saving", SaveSaving.String())
	assert.Equal(t, "saved", SaveSaved.String())
	assert.Equal(t, "failed", SaveFailed.String())
	assert.Equal(t, "not_found", FetchNotFound.String())
	assert.Equal(t, "FetchStatus(9)", FetchStatus(9).String())
}
