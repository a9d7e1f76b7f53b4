package models

import "time"

// Payee kinds on a closeout payment row.
const (
	PayeeMusician     = "musician"
	PayeeSound        = "sound"
	PayeeAgent        = "agent"
	PayeeVenueReceipt = "venue_receipt"
)

// GigPayment is one closeout ledger row for a gig.
type GigPayment struct {
	ID           string    `db:"id" json:"id"`
	GigID        string    `db:"gig_id" json:"gigId"`
	Kind         string    `db:"kind" json:"kind"`
	PayeeID      *string   `db:"payee_id" json:"payeeId,omitempty"`
	PayeeName    *string   `db:"payee_name" json:"payeeName,omitempty"`
	Role         *string   `db:"role" json:"role,omitempty"`
	Amount       float64   `db:"amount" json:"amount"`
	FeeWithheld  float64   `db:"fee_withheld" json:"feeWithheld"`
	Method       *string   `db:"method" json:"method,omitempty"`
	Reference    *string   `db:"reference" json:"reference,omitempty"`
	DueOn        *string   `db:"due_on" json:"dueOn,omitempty"`
	PaidOn       *string   `db:"paid_on" json:"paidOn,omitempty"`
	Eligible1099 bool      `db:"eligible_1099" json:"eligible1099"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
