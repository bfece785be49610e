package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/billing"
	"github.com/mvucinic/billsight/internal/services/bills"
	"github.com/mvucinic/billsight/internal/timeutil"
)

// BillSource is the read-only bill store contract the aggregator consumes.
type BillSource interface {
	ListInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]bills.Bill, error)
}

// CategorizedBill is a transient view of a bill annotated with its spending
// category. Never persisted.
type CategorizedBill struct {
	bills.Bill
	Category string
}

// Aggregator collects a user's bills over a lookback window.
type Aggregator struct {
	source BillSource
	now    func() time.Time
}

func NewAggregator(source BillSource, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{source: source, now: now}
}

// Aggregate returns the user's categorized bills with reference dates in the
// inclusive window [today-days, today]. An empty window is not an error; the
// caller decides whether that is fatal.
func (a *Aggregator) Aggregate(ctx context.Context, userID uuid.UUID, days int) ([]CategorizedBill, timeutil.Window, error) {
	window, err := timeutil.LookbackWindow(a.now(), days)
	if err != nil {
		return nil, timeutil.Window{}, err
	}

	records, err := a.source.ListInRange(ctx, userID, window.Start(), window.End())
	if err != nil {
		return nil, timeutil.Window{}, fmt.Errorf("list bills in range: %w", err)
	}

	categorized := make([]CategorizedBill, 0, len(records))
	for _, bill := range records {
		categorized = append(categorized, CategorizedBill{
			Bill:     bill,
			Category: billing.Classify(bill.BeneficiaryName),
		})
	}
	return categorized, window, nil
}
