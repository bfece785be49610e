package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvucinic/billsight/internal/config"
	"github.com/mvucinic/billsight/internal/timeutil"
)

// RecordStore is the persistence surface the orchestrator needs.
type RecordStore interface {
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Record, error)
	GetLatest(ctx context.Context, userID uuid.UUID, kind Kind) (*Record, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountCompletedToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error)
}

// Service orchestrates a full analysis run: rate check, bill aggregation,
// insight generation, persistence.
type Service struct {
	store      RecordStore
	aggregator *Aggregator
	generator  *Generator
	cfg        config.AnalysisConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(store RecordStore, aggregator *Aggregator, generator *Generator, cfg config.AnalysisConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		aggregator: aggregator,
		generator:  generator,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Generate runs one analysis for the user. days of zero selects the
// configured default window. The persisted record is returned.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, kindRaw string, days int) (*Record, error) {
	kind, err := ParseKind(kindRaw)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		days = s.cfg.DefaultDays
	}
	if days < 1 || days > s.cfg.MaxDays {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidDays, days, s.cfg.MaxDays)
	}

	dayStart := timeutil.StartOfDay(s.now())
	used, err := s.store.CountCompletedToday(ctx, userID, dayStart)
	if err != nil {
		return nil, err
	}
	if used >= s.cfg.DailyLimit {
		return nil, fmt.Errorf("%w: %d of %d used today", ErrRateLimitExceeded, used, s.cfg.DailyLimit)
	}

	items, window, err := s.aggregator.Aggregate(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoBillsFound
	}

	insights := s.generator.Generate(ctx, kind, items, window)

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	record := &Record{
		UserID:      userID,
		Kind:        kind,
		PeriodStart: window.Start(),
		PeriodEnd:   window.End(),
		TotalAmount: total,
		BillsCount:  len(items),
		Prompt:      insights.Prompt,
		AIResponse:  insights.Payload,
		ModelUsed:   insights.ModelUsed,
		TokensUsed:  insights.TokensUsed,
		Status:      StatusCompleted,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("analysis generated",
		"user_id", userID,
		"analysis_id", record.ID,
		"type", kind,
		"bills", record.BillsCount,
		"fallback", insights.Fallback,
	)
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id uuid.UUID) (*Record, error) {
	return s.store.GetByID(ctx, userID, id)
}

// Latest returns the most recent record, optionally filtered by kind.
// kindRaw may be empty; anything else must parse.
func (s *Service) Latest(ctx context.Context, userID uuid.UUID, kindRaw string) (*Record, error) {
	var kind Kind
	if kindRaw != "" {
		parsed, err := ParseKind(kindRaw)
		if err != nil {
			return nil, err
		}
		kind = parsed
	}
	return s.store.GetLatest(ctx, userID, kind)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History lists persisted analyses newest first along with the user's total
// record count for pagination.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.History(ctx, userID, limit, offset)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.Delete(ctx, userID, id)
}
