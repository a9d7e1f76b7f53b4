package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

// PaymentRepository manages the closeout payment ledger for gigs.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ReplaceForGig swaps the full payment ledger for a gig in one transaction.
// Closeout drafts are edited wholesale, so a replace keeps the rows and the
// form in lockstep.
func (r *PaymentRepository) ReplaceForGig(ctx context.Context, gigID string, payments []models.GigPayment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payments tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM gig_payments WHERE gig_id = $1", gigID); err != nil {
		return fmt.Errorf("clear payments: %w", err)
	}

	const insert = `INSERT INTO gig_payments (id, gig_id, kind, payee_id, payee_name, role, amount,
        fee_withheld, method, reference, due_on, paid_on, eligible_1099, created_at)
        VALUES (:id, :gig_id, :kind, :payee_id, :payee_name, :role, :amount,
        :fee_withheld, :method, :reference, :due_on, :paid_on, :eligible_1099, :created_at)`
	now := time.Now().UTC()
	for i := range payments {
		payments[i].GigID = gigID
		if payments[i].ID == "" {
			payments[i].ID = uuid.NewString()
		}
		if payments[i].CreatedAt.IsZero() {
			payments[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, payments[i]); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payments: %w", err)
	}
	return nil
}

// ListByGig returns the payment ledger for a gig in insertion order.
func (r *PaymentRepository) ListByGig(ctx context.Context, gigID string) ([]models.GigPayment, error) {
	const query = `SELECT id, gig_id, kind, payee_id, payee_name, role, amount, fee_withheld,
        method, reference, due_on, paid_on, eligible_1099, created_at
        FROM gig_payments WHERE gig_id = $1 ORDER BY created_at ASC, id ASC`
	var payments []models.GigPayment
	if err := r.db.SelectContext(ctx, &payments, query, gigID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
