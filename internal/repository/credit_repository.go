package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientCredits is returned when an organization's balance cannot
// cover the completion cost. Completion must abort entirely so it can be
// retried once the balance is replenished.
var ErrInsufficientCredits = errors.New("insufficient organization credits")

// CreditRepository handles the organization credit ledger.
type CreditRepository struct {
	pool *pgxpool.Pool
}

// NewCreditRepository creates a new CreditRepository.
func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

// DebitCompletion charges the fixed completion cost in a single transaction:
// balance check, decrement, and ledger entry are all-or-nothing, so a crash
// mid-debit can never leave a decremented balance without its ledger row.
func (r *CreditRepository) DebitCompletion(ctx context.Context, orgID, sessionID uuid.UUID, cost int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int
	err = tx.QueryRow(ctx,
		`SELECT balance FROM organization_credits WHERE organization_id = $1 FOR UPDATE`,
		orgID).Scan(&balance)
	if err != nil {
		return fmt.Errorf("lock balance: %w", err)
	}

	if balance < cost {
		return ErrInsufficientCredits
	}

	if _, err := tx.Exec(ctx,
		`UPDATE organization_credits SET balance = balance - $1 WHERE organization_id = $2`,
		cost, orgID); err != nil {
		return fmt.Errorf("decrement balance: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO credit_transactions (organization_id, session_id, amount, reason)
		 VALUES ($1, $2, $3, 'EXAM_COMPLETION')`,
		orgID, sessionID, -cost); err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}

	return tx.Commit(ctx)
}

// Balance returns the current credit balance for an organization.
func (r *CreditRepository) Balance(ctx context.Context, orgID uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx,
		`SELECT balance FROM organization_credits WHERE organization_id = $1`,
		orgID).Scan(&balance)
	return balance, err
}
