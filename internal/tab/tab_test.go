package tab

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabkeeper/internal/models"
)

var (
	cola  = models.Product{ID: "p1", Name: "Cola", Price: 2.5}
	chips = models.Product{ID: "p2", Name: "Chips", Price: 3.0}
)

func sumPrices(items []models.LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Price
	}
	return sum
}

func TestAddItem_EmptyTab(t *testing.T) {
	tab := New("cust-1")

	require.NoError(t, tab.AddItem(cola))

	require.Equal(t, 1, tab.Len())
	assert.Equal(t, 2.5, tab.Total())
	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.Equal(t, "p1", item.ID)
	assert.Equal(t, "Cola", item.Name)
}

func TestAddItem_NoDeduplication(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))
	require.NoError(t, tab.AddItem(cola))

	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, 5.0, tab.Total())
}

func TestAddItem_CopiesPrice(t *testing.T) {
	tab := New("cust-1")
	product := cola
	require.NoError(t, tab.AddItem(product))

	product.Price = 99
	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, item.Price)
	assert.Equal(t, 2.5, tab.Total())
}

func TestAddItem_NegativePrice(t *testing.T) {
	tab := New("cust-1")
	err := tab.AddItem(models.Product{ID: "bad", Name: "Refund", Price: -1})

	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, 0, tab.Len())
	assert.Equal(t, 0.0, tab.Total())
}

func TestRemoveItem(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))
	require.NoError(t, tab.AddItem(chips))

	require.NoError(t, tab.RemoveItem(0))

	require.Equal(t, 1, tab.Len())
	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, item.Price)
	assert.Equal(t, 3.0, tab.Total())
}

func TestRemoveItem_PreservesOrder(t *testing.T) {
	tab := New("cust-1")
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tab.AddItem(models.Product{ID: name, Name: name, Price: 1}))
	}

	require.NoError(t, tab.RemoveItem(1))

	var names []string
	for _, item := range tab.Items() {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)
}

func TestRemoveItem_OutOfRange(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))
	before := tab.Items()

	for _, index := range []int{-1, 1, 5} {
		err := tab.RemoveItem(index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", index)
	}

	assert.Equal(t, before, tab.Items())
	assert.Equal(t, 2.5, tab.Total())
}

func TestSetStatus(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))

	require.NoError(t, tab.SetStatus(0, models.StatusPaid))

	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, item.Status)
	assert.Equal(t, 2.5, tab.Total())
	assert.Equal(t, 1, tab.Len())
}

func TestSetStatus_Errors(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))

	assert.ErrorIs(t, tab.SetStatus(3, models.StatusPaid), ErrIndexOutOfRange)
	assert.ErrorIs(t, tab.SetStatus(0, "refunded"), ErrInvalidStatus)

	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, item.Status)
}

func TestLoad(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))

	tab.Load([]models.LineItem{
		{ID: "p2", Name: "Chips", Price: 3.0, Status: models.StatusCredit},
		{ID: "p3", Name: "Beer", Price: 4.5},
	})

	require.Equal(t, 2, tab.Len())
	assert.Equal(t, 7.5, tab.Total())
	items := tab.Items()
	assert.Equal(t, models.StatusCredit, items[0].Status)
	assert.Equal(t, models.StatusPending, items[1].Status)
}

func TestCheckItems(t *testing.T) {
	assert.NoError(t, CheckItems(nil))
	assert.NoError(t, CheckItems([]models.LineItem{{ID: "p1", Price: 0}, {ID: "p2", Price: 2.5}}))

	err := CheckItems([]models.LineItem{{ID: "p1", Price: 1}, {ID: "p2", Price: -3}})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Contains(t, err.Error(), "item 1 (p2)")
}

func TestItems_ReturnsCopy(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))

	items := tab.Items()
	items[0].Price = 100
	items[0].Status = models.StatusPaid

	item, err := tab.Item(0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, item.Price)
	assert.Equal(t, models.StatusPending, item.Status)
}

func TestPayload_RoundTrip(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))
	require.NoError(t, tab.AddItem(chips))
	require.NoError(t, tab.SetStatus(1, models.StatusCredit))

	data, err := json.Marshal(tab.Payload())
	require.NoError(t, err)

	var decoded models.TabPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	loaded := FromItems("cust-1", decoded.Products)

	assert.Equal(t, tab.Items(), loaded.Items())
	assert.Equal(t, tab.Total(), loaded.Total())
}

func TestPayload_EmptyTabSerializesEmptyList(t *testing.T) {
	data, err := json.Marshal(New("cust-1").Payload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"products": []}`, string(data))
}

// TestTotalInvariant applies random add/remove/status sequences and checks
// the total after every step.
func TestTotalInvariant(t *testing.T) {
	faker := gofakeit.New(42)

	for run := 0; run < 50; run++ {
		tab := New(faker.UUID())
		for step := 0; step < 40; step++ {
			switch op := faker.IntRange(0, 2); {
			case op == 0 || tab.Len() == 0:
				product := models.Product{
					ID:    faker.UUID(),
					Name:  faker.ProductName(),
					Price: math.Round(faker.Float64Range(0, 50)*100) / 100,
				}
				require.NoError(t, tab.AddItem(product))
			case op == 1:
				require.NoError(t, tab.RemoveItem(faker.IntRange(0, tab.Len()-1)))
			default:
				before := tab.Total()
				count := tab.Len()
				status := models.Statuses[faker.IntRange(0, len(models.Statuses)-1)]
				require.NoError(t, tab.SetStatus(faker.IntRange(0, tab.Len()-1), status))
				assert.Equal(t, before, tab.Total())
				assert.Equal(t, count, tab.Len())
			}

			assert.InDelta(t, sumPrices(tab.Items()), tab.Total(), 1e-9)
		}
	}
}

func TestBreakdown(t *testing.T) {
	tab := New("cust-1")
	require.NoError(t, tab.AddItem(cola))
	require.NoError(t, tab.AddItem(chips))
	require.NoError(t, tab.SetStatus(0, models.StatusPaid))

	b := tab.Breakdown()
	assert.Equal(t, 5.5, b.Total)
	assert.Equal(t, 2.5, b.Paid)
	assert.Equal(t, 3.0, b.Outstanding)
}
