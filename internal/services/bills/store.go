package bills

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("bill not found")

// Bill is a recorded payment obligation.
type Bill struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	BeneficiaryName string          `json:"beneficiary_name"`
	ReferenceDate   time.Time       `json:"reference_date"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Store persists bills in Postgres. All operations are scoped to the owning user.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type WriteParams struct {
	Amount          decimal.Decimal
	BeneficiaryName string
	ReferenceDate   time.Time
	Status          string
}

func (s *Store) Create(ctx context.Context, userID uuid.UUID, params WriteParams) (Bill, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO bills (user_id, amount, beneficiary_name, reference_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, amount, beneficiary_name, reference_date, status, created_at`,
		userID, params.Amount, params.BeneficiaryName, params.ReferenceDate, params.Status,
	)
	return scanBill(row)
}

func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]Bill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, amount, beneficiary_name, reference_date, status, created_at
		FROM bills WHERE user_id = $1
		ORDER BY reference_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBills(rows)
}

// ListInRange returns the user's bills with reference_date in [from, to]
// inclusive, ordered by reference date for deterministic aggregation.
func (s *Store) ListInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Bill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, amount, beneficiary_name, reference_date, status, created_at
		FROM bills
		WHERE user_id = $1 AND reference_date >= $2 AND reference_date <= $3
		ORDER BY reference_date, created_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBills(rows)
}

func (s *Store) GetByID(ctx context.Context, userID, id uuid.UUID) (Bill, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, amount, beneficiary_name, reference_date, status, created_at
		FROM bills WHERE user_id = $1 AND id = $2`, userID, id)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, ErrNotFound
	}
	return bill, err
}

func (s *Store) Update(ctx context.Context, userID, id uuid.UUID, params WriteParams) (Bill, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE bills
		SET amount = $3, beneficiary_name = $4, reference_date = $5, status = $6
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, amount, beneficiary_name, reference_date, status, created_at`,
		userID, id, params.Amount, params.BeneficiaryName, params.ReferenceDate, params.Status,
	)
	bill, err := scanBill(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, ErrNotFound
	}
	return bill, err
}

func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bills WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.UserID, &b.Amount, &b.BeneficiaryName, &b.ReferenceDate, &b.Status, &b.CreatedAt)
	return b, err
}

func collectBills(rows pgx.Rows) ([]Bill, error) {
	items := make([]Bill, 0)
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.Amount, &b.BeneficiaryName, &b.ReferenceDate, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
