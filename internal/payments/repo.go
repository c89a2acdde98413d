package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const attemptColumns = `order_id, receipt, amount_minor, currency, status, COALESCE(payment_id, ''), verified_at, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, a *Attempt) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO payment_attempts(order_id, receipt, amount_minor, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		a.OrderID, a.Receipt, a.AmountMinor, a.Currency, string(a.Status),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Attempt, error) {
	a, err := scanAttempt(r.DB.QueryRow(ctx, `SELECT `+attemptColumns+` FROM payment_attempts WHERE order_id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	return a, nil
}

func (r *Repo) Transition(ctx context.Context, orderID string, fn func(a *Attempt) error) (*Attempt, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAttempt(tx.QueryRow(ctx, `SELECT `+attemptColumns+` FROM payment_attempts WHERE order_id=$1 FOR UPDATE`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock attempt: %w", err)
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	var paymentID *string
	if a.PaymentID != "" {
		paymentID = &a.PaymentID
	}
	err = tx.QueryRow(ctx, `
		UPDATE payment_attempts
		SET status=$2, payment_id=$3, verified_at=$4, updated_at=NOW()
		WHERE order_id=$1
		RETURNING updated_at`,
		a.OrderID, string(a.Status), paymentID, a.VerifiedAt,
	).Scan(&a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPaymentIDTaken
		}
		return nil, fmt.Errorf("update attempt: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	var status string
	if err := row.Scan(&a.OrderID, &a.Receipt, &a.AmountMinor, &a.Currency, &status,
		&a.PaymentID, &a.VerifiedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}
