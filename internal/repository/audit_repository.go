package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

// AuditRepository records one row per notification attempt, sent or skipped.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends an audit row. The token groups all rows written by one
// notification run.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.EmailAudit) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.TS.IsZero() {
		entry.TS = time.Now().UTC()
	}
	const query = `INSERT INTO email_audit (id, token, gig_id, recipient_email, kind, status, detail, ts)
        VALUES (:id, :token, :gig_id, :recipient_email, :kind, :status, :detail, :ts)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert email audit: %w", err)
	}
	return nil
}

// ListByGig returns the audit trail for a gig, newest first.
func (r *AuditRepository) ListByGig(ctx context.Context, gigID string) ([]models.EmailAudit, error) {
	const query = `SELECT id, token, gig_id, recipient_email, kind, status, detail, ts
        FROM email_audit WHERE gig_id = $1 ORDER BY ts DESC`
	var entries []models.EmailAudit
	if err := r.db.SelectContext(ctx, &entries, query, gigID); err != nil {
		return nil, fmt.Errorf("list email audit: %w", err)
	}
	return entries, nil
}
