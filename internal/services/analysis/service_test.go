package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/ai"
	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/services/bills"
)

type fakeBillSource struct {
	bills []bills.Bill
	err   error
}

func (f *fakeBillSource) ListInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]bills.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bills, nil
}

type fakeRecordStore struct {
	created    []*Record
	todayCount int
	countErr   error

	latest  *Record
	page    []*Record
	total   int
	deleted []uuid.UUID
}

func (f *fakeRecordStore) Create(ctx context.Context, record *Record) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	f.created = append(f.created, record)
	return nil
}

func (f *fakeRecordStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*Record, error) {
	for _, record := range f.created {
		if record.ID == id && record.UserID == userID {
			return record, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRecordStore) GetLatest(ctx context.Context, userID uuid.UUID, kind Kind) (*Record, error) {
	if f.latest == nil {
		return nil, ErrNotFound
	}
	if kind != "" && f.latest.Kind != kind {
		return nil, ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeRecordStore) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return f.page, f.total, nil
}

func (f *fakeRecordStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecordStore) CountCompletedToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error) {
	return f.todayCount, f.countErr
}

type fakeModel struct {
	response string
	err      error
	calls    int
}

func (m *fakeModel) Complete(ctx context.Context, prompt string) (ai.Completion, error) {
	m.calls++
	if m.err != nil {
		return ai.Completion{}, m.err
	}
	return ai.Completion{Text: m.response, TokensUsed: 42}, nil
}

func (m *fakeModel) Model() string { return "fake-model" }

func testBill(t *testing.T, beneficiary, amount string, daysAgo int) bills.Bill {
	t.Helper()
	value, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad amount %q: %v", amount, err)
	}
	return bills.Bill{
		ID:              uuid.New(),
		BeneficiaryName: beneficiary,
		Amount:          value,
		ReferenceDate:   time.Now().AddDate(0, 0, -daysAgo),
		Status:          "paid",
	}
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{DailyLimit: 10, DefaultDays: 30, MaxDays: 365}
}

func newTestService(t *testing.T, store *fakeRecordStore, source *fakeBillSource, model ai.TextGenerator) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	aggregator := NewAggregator(source, nil)
	generator := NewGenerator(model, nil, logger)
	return NewService(store, aggregator, generator, testAnalysisConfig(), logger)
}

func TestGenerateMonthlyPersistsRecord(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	source := &fakeBillSource{bills: []bills.Bill{
		testBill(t, "EPCG", "45.50", 5),
		testBill(t, "Vodovod", "12.30", 10),
	}}
	store := &fakeRecordStore{}
	model := &fakeModel{response: `{"summary":"ok","total_amount":999,"breakdown":[],"recommendations":["a","b","c"]}`}

	record, err := newTestService(t, store, source, model).Generate(ctx, userID, "monthly", 30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(store.created))
	}
	if record.Kind != KindMonthly {
		t.Errorf("kind = %q, want monthly", record.Kind)
	}
	if record.BillsCount != 2 {
		t.Errorf("bills count = %d, want 2", record.BillsCount)
	}
	if want := decimal.RequireFromString("57.80"); !record.TotalAmount.Equal(want) {
		t.Errorf("total = %s, want %s", record.TotalAmount, want)
	}
	if record.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.TokensUsed == nil || *record.TokensUsed != 42 {
		t.Errorf("tokens = %v, want 42", record.TokensUsed)
	}

	// The model's claimed total must be replaced with the computed one.
	var payload MonthlyInsights
	if err := json.Unmarshal(record.AIResponse, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.TotalAmount != 57.80 {
		t.Errorf("payload total = %v, want 57.80", payload.TotalAmount)
	}
}

func TestGenerateRejectsUnknownKind(t *testing.T) {
	store := &fakeRecordStore{}
	svc := newTestService(t, store, &fakeBillSource{}, &fakeModel{})

	_, err := svc.Generate(context.Background(), uuid.New(), "weekly", 30)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
	if len(store.created) != 0 {
		t.Errorf("record persisted despite invalid kind")
	}
}

func TestGenerateRejectsOutOfRangeDays(t *testing.T) {
	svc := newTestService(t, &fakeRecordStore{}, &fakeBillSource{}, &fakeModel{})

	for _, days := range []int{-1, 366} {
		if _, err := svc.Generate(context.Background(), uuid.New(), "monthly", days); !errors.Is(err, ErrInvalidDays) {
			t.Errorf("days=%d: err = %v, want ErrInvalidDays", days, err)
		}
	}
}

func TestGenerateZeroDaysUsesDefault(t *testing.T) {
	source := &fakeBillSource{bills: []bills.Bill{testBill(t, "EPCG", "10.00", 1)}}
	store := &fakeRecordStore{}
	svc := newTestService(t, store, source, &fakeModel{err: errors.New("down")})

	record, err := svc.Generate(context.Background(), uuid.New(), "monthly", 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wantStart := record.PeriodEnd.AddDate(0, 0, -30)
	if !record.PeriodStart.Equal(wantStart) {
		t.Errorf("window start = %s, want %s (30 days before the end)", record.PeriodStart, wantStart)
	}
}

func TestGenerateNoBills(t *testing.T) {
	store := &fakeRecordStore{}
	model := &fakeModel{}
	svc := newTestService(t, store, &fakeBillSource{}, model)

	_, err := svc.Generate(context.Background(), uuid.New(), "monthly", 30)
	if !errors.Is(err, ErrNoBillsFound) {
		t.Fatalf("err = %v, want ErrNoBillsFound", err)
	}
	if model.calls != 0 {
		t.Errorf("model called %d times for empty window", model.calls)
	}
	if len(store.created) != 0 {
		t.Errorf("record persisted despite empty window")
	}
}

func TestGenerateDailyLimit(t *testing.T) {
	source := &fakeBillSource{bills: []bills.Bill{testBill(t, "EPCG", "10.00", 1)}}
	store := &fakeRecordStore{todayCount: 10}
	model := &fakeModel{}
	svc := newTestService(t, store, source, model)

	_, err := svc.Generate(context.Background(), uuid.New(), "monthly", 30)
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("err = %v, want ErrRateLimitExceeded", err)
	}
	if model.calls != 0 || len(store.created) != 0 {
		t.Errorf("rate-limited request reached the pipeline")
	}

	store.todayCount = 9
	if _, err := svc.Generate(context.Background(), uuid.New(), "monthly", 30); err != nil {
		t.Fatalf("request under the limit rejected: %v", err)
	}
}

func TestGenerateFallsBackOnModelFailure(t *testing.T) {
	source := &fakeBillSource{bills: []bills.Bill{
		testBill(t, "EPCG", "45.50", 3),
		testBill(t, "EPCG", "38.20", 20),
		testBill(t, "Telemach", "25.00", 8),
	}}
	store := &fakeRecordStore{}
	svc := newTestService(t, store, source, &fakeModel{err: errors.New("model unavailable")})

	record, err := svc.Generate(context.Background(), uuid.New(), "category", 30)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if record.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.TokensUsed != nil {
		t.Errorf("fallback record carries token count %d", *record.TokensUsed)
	}

	var payload CategoryInsights
	if err := json.Unmarshal(record.AIResponse, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(payload.Categories))
	}
	if payload.Categories[0].Category != "Electricity" {
		t.Errorf("largest category = %q, want Electricity", payload.Categories[0].Category)
	}
	if payload.Categories[0].TotalAmount != 83.70 {
		t.Errorf("Electricity total = %v, want 83.70", payload.Categories[0].TotalAmount)
	}
	if len(payload.Recommendations) < 3 {
		t.Errorf("recommendations = %d, want at least 3", len(payload.Recommendations))
	}
}

func TestHistoryReturnsFullCount(t *testing.T) {
	store := &fakeRecordStore{
		page:  []*Record{{ID: uuid.New()}, {ID: uuid.New()}},
		total: 57,
	}
	svc := newTestService(t, store, &fakeBillSource{}, &fakeModel{})

	page, total, err := svc.History(context.Background(), uuid.New(), 2, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}
	if total != 57 {
		t.Errorf("total = %d, want 57 (full count, not page length)", total)
	}
}

func TestLatestRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t, &fakeRecordStore{}, &fakeBillSource{}, &fakeModel{})

	if _, err := svc.Latest(context.Background(), uuid.New(), "weekly"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
}
