package models

// Musician is a performer contact record.
type Musician struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"display_name" json:"name"`
	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}

// SoundTech is a sound technician contact record.
type SoundTech struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"display_name" json:"name"`
	Email *string `db:"email" json:"email,omitempty"`
}

// Agent is a booking agent contact record.
type Agent struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"display_name" json:"name"`
	Email *string `db:"email" json:"email,omitempty"`
}
