package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store persists analysis records in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const recordColumns = `id, user_id, analysis_type, period_start, period_end, total_amount,
	bills_count, prompt, ai_response, model_used, tokens_used, status, error_message, created_at`

// Create inserts the record in a single statement so a half-written analysis
// can never be observed.
func (s *Store) Create(ctx context.Context, record *Record) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO analyses (
			user_id, analysis_type, period_start, period_end, total_amount,
			bills_count, prompt, ai_response, model_used, tokens_used, status, error_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		record.UserID, string(record.Kind), record.PeriodStart, record.PeriodEnd,
		record.TotalAmount, record.BillsCount, record.Prompt, record.AIResponse,
		record.ModelUsed, record.TokensUsed, record.Status, record.ErrorMessage,
	)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, userID, id uuid.UUID) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM analyses
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return record, nil
}

// GetLatest returns the newest record for the user, optionally restricted to
// one analysis kind.
func (s *Store) GetLatest(ctx context.Context, userID uuid.UUID, kind Kind) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM analyses
		WHERE user_id = $1`
	args := []any{userID}
	if kind != "" {
		query += ` AND analysis_type = $2`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	record, err := scanRecord(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest analysis: %w", err)
	}
	return record, nil
}

// History returns one page of records, newest first, plus the total number of
// records the user has. The count covers the whole table slice for the user,
// not the returned page.
func (s *Store) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analyses WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	return records, total, nil
}

func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM analyses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCompletedToday counts the user's completed analyses since local
// midnight. This is the value the daily rate limit is checked against.
func (s *Store) CountCompletedToday(ctx context.Context, userID uuid.UUID, dayStart time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM analyses
		WHERE user_id = $1 AND status = $2 AND created_at >= $3`,
		userID, StatusCompleted, dayStart,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count today's analyses: %w", err)
	}
	return count, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		record Record
		kind   string
		total  decimal.Decimal
	)
	err := row.Scan(
		&record.ID, &record.UserID, &kind, &record.PeriodStart, &record.PeriodEnd,
		&total, &record.BillsCount, &record.Prompt, &record.AIResponse,
		&record.ModelUsed, &record.TokensUsed, &record.Status, &record.ErrorMessage,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Kind = Kind(kind)
	record.TotalAmount = total
	return &record, nil
}
