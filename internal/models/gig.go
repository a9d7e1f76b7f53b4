package models

import "time"

// Closeout status lifecycle for a gig.
const (
	CloseoutOpen   = "open"
	CloseoutDraft  = "draft"
	CloseoutClosed = "closed"
)

// Gig is a single booked performance. Dates and wall-clock times are kept as
// the raw strings the store returns; they carry no zone until resolved.
type Gig struct {
	ID             string     `db:"id" json:"id"`
	Title          *string    `db:"title" json:"title"`
	AltTitle       *string    `db:"alt_title" json:"altTitle,omitempty"`
	EventDate      string     `db:"event_date" json:"eventDate"`
	StartTime      *string    `db:"start_time" json:"startTime"`
	EndTime        *string    `db:"end_time" json:"endTime"`
	Fee            *float64   `db:"fee" json:"fee,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	LineupHTML     *string    `db:"lineup_html" json:"lineupHtml,omitempty"`
	LineupText     *string    `db:"lineup_text" json:"lineupText,omitempty"`
	IsPrivate      bool       `db:"is_private" json:"isPrivate"`
	VenueID        *string    `db:"venue_id" json:"venueId,omitempty"`
	AgentID        *string    `db:"agent_id" json:"agentId,omitempty"`
	SoundTechID    *string    `db:"sound_tech_id" json:"soundTechId,omitempty"`
	ContractStatus *string    `db:"contract_status" json:"contractStatus,omitempty"`
	CloseoutStatus string     `db:"closeout_status" json:"closeoutStatus"`
	CloseoutNotes  *string    `db:"closeout_notes" json:"closeoutNotes,omitempty"`
	CloseoutAt     *time.Time `db:"closeout_at" json:"closeoutAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Venue holds the denormalized venue fields joined onto a gig.
type Venue struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	ContactEmail *string `db:"contact_email" json:"contactEmail,omitempty"`
	AddressLine1 *string `db:"address_line1" json:"addressLine1,omitempty"`
	City         *string `db:"city" json:"city,omitempty"`
	State        *string `db:"state" json:"state,omitempty"`
}

// LineupSlot is one ordered roster entry for a gig.
type LineupSlot struct {
	MusicianID string  `db:"musician_id" json:"musicianId"`
	Name       string  `db:"name" json:"name"`
	Role       string  `db:"role" json:"role"`
	Email      *string `db:"email" json:"email,omitempty"`
}

// GigDetail is the denormalized read model the pipelines consume: the gig row
// with its venue and ordered lineup resolved.
type GigDetail struct {
	Gig
	Venue  *Venue       `json:"venue,omitempty"`
	Lineup []LineupSlot `json:"lineup,omitempty"`
}

// GigFilter narrows gig listings.
type GigFilter struct {
	From           *string
	To             *string
	CloseoutStatus string
	Page           int
	PageSize       int
}
