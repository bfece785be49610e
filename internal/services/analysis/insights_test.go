package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mvucinic/billsight/internal/billing"
	"github.com/mvucinic/billsight/internal/timeutil"
)

func testWindow(t *testing.T, days int) timeutil.Window {
	t.Helper()
	window, err := timeutil.LookbackWindow(time.Now(), days)
	if err != nil {
		t.Fatalf("LookbackWindow: %v", err)
	}
	return window
}

func categorized(t *testing.T, beneficiary, amount string, daysAgo int) CategorizedBill {
	t.Helper()
	bill := testBill(t, beneficiary, amount, daysAgo)
	return CategorizedBill{Bill: bill, Category: billing.Classify(beneficiary)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonthlyFallbackIsDeterministic(t *testing.T) {
	items := []CategorizedBill{
		categorized(t, "EPCG", "45.50", 3),
		categorized(t, "Vodovod", "12.30", 12),
	}
	gen := NewGenerator(&fakeModel{err: errors.New("down")}, nil, discardLogger())
	window := testWindow(t, 30)

	first := gen.Generate(context.Background(), KindMonthly, items, window)
	second := gen.Generate(context.Background(), KindMonthly, items, window)

	if !first.Fallback || !second.Fallback {
		t.Fatal("expected fallback payloads")
	}
	if !bytes.Equal(first.Payload, second.Payload) {
		t.Errorf("fallback payloads differ:\n%s\n%s", first.Payload, second.Payload)
	}

	var payload MonthlyInsights
	if err := json.Unmarshal(first.Payload, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.TotalAmount != 57.80 {
		t.Errorf("total = %v, want 57.80", payload.TotalAmount)
	}
	if len(payload.Breakdown) != 2 {
		t.Errorf("breakdown = %d entries, want 2", len(payload.Breakdown))
	}
	if payload.Summary != "Analysis of 2 bills over the last 30 days" {
		t.Errorf("summary = %q", payload.Summary)
	}
	if len(payload.Recommendations) != 3 {
		t.Errorf("recommendations = %d, want 3", len(payload.Recommendations))
	}
}

func TestCategoryFallbackGroupsByCategory(t *testing.T) {
	items := []CategorizedBill{
		categorized(t, "EPCG", "60.00", 2),
		categorized(t, "EPCG", "40.00", 18),
		categorized(t, "Vodovod", "25.00", 9),
		categorized(t, "Telemach", "25.00", 9),
	}
	gen := NewGenerator(nil, nil, discardLogger())

	result := gen.Generate(context.Background(), KindCategory, items, testWindow(t, 30))
	if !result.Fallback {
		t.Fatal("nil model must produce a fallback")
	}
	if result.ModelUsed != "local-fallback" {
		t.Errorf("model = %q, want local-fallback", result.ModelUsed)
	}

	var payload CategoryInsights
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(payload.Categories))
	}

	// Sorted by total descending, ties broken by name.
	if payload.Categories[0].Category != "Electricity" {
		t.Errorf("first category = %q, want Electricity", payload.Categories[0].Category)
	}
	if payload.Categories[1].Category != "Internet" || payload.Categories[2].Category != "Water" {
		t.Errorf("tie order = %q, %q; want Internet, Water",
			payload.Categories[1].Category, payload.Categories[2].Category)
	}

	if payload.Categories[0].TotalAmount != 100.00 {
		t.Errorf("Electricity total = %v, want 100.00", payload.Categories[0].TotalAmount)
	}
	if payload.Categories[0].Percentage != 66.7 {
		t.Errorf("Electricity percentage = %v, want 66.7", payload.Categories[0].Percentage)
	}
	if payload.Categories[1].Percentage != 16.7 {
		t.Errorf("Internet percentage = %v, want 16.7", payload.Categories[1].Percentage)
	}
	if payload.Categories[0].Insight != "Electricity is €100.00 (66.7%)" {
		t.Errorf("insight = %q", payload.Categories[0].Insight)
	}
	if payload.Summary != "Total €150.00 across 3 categories" {
		t.Errorf("summary = %q", payload.Summary)
	}
}

func TestGenerateMalformedModelOutputFallsBack(t *testing.T) {
	items := []CategorizedBill{categorized(t, "EPCG", "10.00", 1)}
	model := &fakeModel{response: `{"summary":""}`}
	gen := NewGenerator(model, nil, discardLogger())

	result := gen.Generate(context.Background(), KindMonthly, items, testWindow(t, 30))
	if !result.Fallback {
		t.Fatal("malformed output must fall back")
	}
	if model.calls != 1 {
		t.Errorf("model called %d times, want exactly 1", model.calls)
	}
	if result.TokensUsed != nil {
		t.Errorf("fallback result carries token count")
	}
}

func TestGenerateFencedModelOutputAccepted(t *testing.T) {
	items := []CategorizedBill{categorized(t, "EPCG", "10.00", 1)}
	model := &fakeModel{response: "```json\n{\"summary\":\"tight month\",\"total_amount\":1,\"breakdown\":[],\"recommendations\":[\"a\",\"b\",\"c\"]}\n```"}
	gen := NewGenerator(model, nil, discardLogger())

	result := gen.Generate(context.Background(), KindMonthly, items, testWindow(t, 30))
	if result.Fallback {
		t.Fatal("fenced but valid JSON must be accepted")
	}

	var payload MonthlyInsights
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Summary != "tight month" {
		t.Errorf("summary = %q", payload.Summary)
	}
	if payload.TotalAmount != 10.00 {
		t.Errorf("total = %v, want the computed 10.00, not the model's 1", payload.TotalAmount)
	}
}

func TestGenerateZeroTotalPercentages(t *testing.T) {
	items := []CategorizedBill{
		categorized(t, "EPCG", "0.00", 1),
		categorized(t, "Vodovod", "0.00", 2),
	}
	gen := NewGenerator(nil, nil, discardLogger())

	result := gen.Generate(context.Background(), KindCategory, items, testWindow(t, 30))

	var payload CategoryInsights
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, category := range payload.Categories {
		if category.Percentage != 0 {
			t.Errorf("%s percentage = %v, want 0 when the grand total is zero",
				category.Category, category.Percentage)
		}
	}
}
