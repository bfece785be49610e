package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mvucinic/billsight/internal/services/bills"
	"github.com/mvucinic/billsight/internal/timeutil"
)

func TestAggregateClassifiesBills(t *testing.T) {
	source := &fakeBillSource{bills: []bills.Bill{
		testBill(t, "EPCG", "45.50", 5),
		testBill(t, "Unknown Provider d.o.o.", "9.99", 2),
	}}
	fixed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	aggregator := NewAggregator(source, func() time.Time { return fixed })

	items, window, err := aggregator.Aggregate(context.Background(), uuid.New(), 30)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if items[0].Category != "Electricity" {
		t.Errorf("EPCG classified as %q", items[0].Category)
	}
	if items[1].Category != "Other" {
		t.Errorf("unknown provider classified as %q", items[1].Category)
	}
	if window.Days() != 30 {
		t.Errorf("window days = %d, want 30", window.Days())
	}
	if want := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC); !window.Start().Equal(want) {
		t.Errorf("window start = %s, want %s", window.Start(), want)
	}
}

func TestAggregateEmptyWindowIsNotAnError(t *testing.T) {
	aggregator := NewAggregator(&fakeBillSource{}, nil)

	items, _, err := aggregator.Aggregate(context.Background(), uuid.New(), 30)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestAggregateRejectsBadLookback(t *testing.T) {
	aggregator := NewAggregator(&fakeBillSource{}, nil)

	if _, _, err := aggregator.Aggregate(context.Background(), uuid.New(), 0); !errors.Is(err, timeutil.ErrInvalidLookback) {
		t.Fatalf("err = %v, want ErrInvalidLookback", err)
	}
}
