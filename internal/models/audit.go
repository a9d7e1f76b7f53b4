package models

import "time"

// Audit statuses written for outbound notification attempts.
const (
	AuditSent             = "sent"
	AuditFailed           = "failed"
	AuditSkippedNoEmail   = "skipped-no-email"
	AuditSkippedNoContact = "skipped-no-contact"
	AuditSkippedPrivate   = "skipped-private-gig"
	AuditSkippedAgent     = "skipped-agent-managed"
)

// EmailAudit is one append-only row per outward send attempt, including
// failures and skips. Never mutated or deleted.
type EmailAudit struct {
	ID             string    `db:"id" json:"id"`
	Token          string    `db:"token" json:"token"`
	GigID          string    `db:"gig_id" json:"gigId"`
	RecipientEmail *string   `db:"recipient_email" json:"recipientEmail,omitempty"`
	Kind           string    `db:"kind" json:"kind"`
	Status         string    `db:"status" json:"status"`
	Detail         *string   `db:"detail" json:"detail,omitempty"`
	TS             time.Time `db:"ts" json:"ts"`
}
