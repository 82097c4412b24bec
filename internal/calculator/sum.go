// Package calculator does the money arithmetic for tabs.
//
// Prices travel as float64 on the wire. Every sum here is computed with
// exact decimals and converted back once, so repeated additions and removals
// never accumulate binary rounding error.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabkeeper/internal/models"
)

// Breakdown is a tab total split by settlement status.
type Breakdown struct {
	Total   float64
	Pending float64
	Paid    float64
	Credit  float64
	// Outstanding is what the customer still owes (pending + credit).
	Outstanding float64
}

// Sum returns the sum of all item prices.
func Sum(items []models.LineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price))
	}
	return total.InexactFloat64()
}

// CalculateBreakdown sums item prices per status.
// Items with an unknown status are counted in Total only.
func CalculateBreakdown(items []models.LineItem) Breakdown {
	sums := make(map[models.Status]decimal.Decimal, len(models.Statuses))
	total := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.Price)
		total = total.Add(price)
		if item.Status.Valid() {
			sums[item.Status] = sums[item.Status].Add(price)
		}
	}

	pending := sums[models.StatusPending]
	credit := sums[models.StatusCredit]
	return Breakdown{
		Total:       total.InexactFloat64(),
		Pending:     pending.InexactFloat64(),
		Paid:        sums[models.StatusPaid].InexactFloat64(),
		Credit:      credit.InexactFloat64(),
		Outstanding: pending.Add(credit).InexactFloat64(),
	}
}

// Format renders an amount with two decimals, e.g. "2.50".
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
