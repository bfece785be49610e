package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

// Transaction is a recorded merchant payment.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	MerchantName    string          `json:"merchant_name"`
	TransactionDate time.Time       `json:"transaction_date"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Store persists transactions in Postgres, scoped to the owning user.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type WriteParams struct {
	Amount          decimal.Decimal
	MerchantName    string
	TransactionDate time.Time
	Status          string
}

func (s *Store) Create(ctx context.Context, userID uuid.UUID, params WriteParams) (Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, amount, merchant_name, transaction_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, amount, merchant_name, transaction_date, status, created_at`,
		userID, params.Amount, params.MerchantName, params.TransactionDate, params.Status,
	)
	return scanTransaction(row)
}

func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, amount, merchant_name, transaction_date, status, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY transaction_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Transaction, 0)
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.MerchantName, &tx.TransactionDate, &tx.Status, &tx.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	return items, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, userID, id uuid.UUID) (Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, amount, merchant_name, transaction_date, status, created_at
		FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return tx, err
}

func (s *Store) Update(ctx context.Context, userID, id uuid.UUID, params WriteParams) (Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE transactions
		SET amount = $3, merchant_name = $4, transaction_date = $5, status = $6
		WHERE user_id = $1 AND id = $2
		RETURNING id, user_id, amount, merchant_name, transaction_date, status, created_at`,
		userID, id, params.Amount, params.MerchantName, params.TransactionDate, params.Status,
	)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	return tx, err
}

func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var tx Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.MerchantName, &tx.TransactionDate, &tx.Status, &tx.CreatedAt)
	return tx, err
}
