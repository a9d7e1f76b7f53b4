package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

const gigColumns = `g.id, g.title, g.alt_title, g.event_date, g.start_time, g.end_time, g.fee, g.notes,
        g.lineup_html, g.lineup_text, g.is_private, g.venue_id, g.agent_id, g.sound_tech_id,
        g.contract_status, g.closeout_status, g.closeout_notes, g.closeout_at, g.created_at, g.updated_at`

// GigRepository manages persistence for gigs and their lineup.
type GigRepository struct {
	db *sqlx.DB
}

// NewGigRepository constructs a GigRepository.
func NewGigRepository(db *sqlx.DB) *GigRepository {
	return &GigRepository{db: db}
}

// List returns gigs matching the provided filters, newest date first.
func (r *GigRepository) List(ctx context.Context, filter models.GigFilter) ([]models.Gig, int, error) {
	base := "FROM gigs g"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("g.event_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("g.event_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.CloseoutStatus != "" {
		conditions = append(conditions, fmt.Sprintf("g.closeout_status = $%d", len(args)+1))
		args = append(args, filter.CloseoutStatus)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY g.event_date DESC, g.created_at DESC LIMIT %d OFFSET %d",
		gigColumns, base, size, offset)

	var gigs []models.Gig
	if err := r.db.SelectContext(ctx, &gigs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list gigs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count gigs: %w", err)
	}
	return gigs, total, nil
}

// FindByID fetches a bare gig row by ID.
func (r *GigRepository) FindByID(ctx context.Context, id string) (*models.Gig, error) {
	query := fmt.Sprintf("SELECT %s FROM gigs g WHERE g.id = $1", gigColumns)
	var gig models.Gig
	if err := r.db.GetContext(ctx, &gig, query, id); err != nil {
		return nil, err
	}
	return &gig, nil
}

// FindDetail fetches a gig with its venue and ordered lineup resolved. The
// venue is left-joined; a gig without one comes back with a nil Venue.
func (r *GigRepository) FindDetail(ctx context.Context, id string) (models.GigDetail, error) {
	gig, err := r.FindByID(ctx, id)
	if err != nil {
		return models.GigDetail{}, fmt.Errorf("find gig: %w", err)
	}
	detail := models.GigDetail{Gig: *gig}

	if gig.VenueID != nil {
		const venueQuery = `SELECT v.id, v.name, v.contact_email, v.address_line1, v.city, v.state
        FROM venues v WHERE v.id = $1`
		var venue models.Venue
		err := r.db.GetContext(ctx, &venue, venueQuery, *gig.VenueID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return models.GigDetail{}, fmt.Errorf("find venue: %w", err)
		}
		if err == nil {
			detail.Venue = &venue
		}
	}

	const lineupQuery = `SELECT l.musician_id, m.display_name AS name, l.role, m.email
        FROM gig_lineup l JOIN musicians m ON m.id = l.musician_id
        WHERE l.gig_id = $1 ORDER BY l.position ASC`
	if err := r.db.SelectContext(ctx, &detail.Lineup, lineupQuery, id); err != nil {
		return models.GigDetail{}, fmt.Errorf("find lineup: %w", err)
	}
	return detail, nil
}

// Create inserts a new gig record.
func (r *GigRepository) Create(ctx context.Context, gig *models.Gig) error {
	if gig.ID == "" {
		gig.ID = uuid.NewString()
	}
	if gig.CloseoutStatus == "" {
		gig.CloseoutStatus = models.CloseoutOpen
	}
	now := time.Now().UTC()
	if gig.CreatedAt.IsZero() {
		gig.CreatedAt = now
	}
	gig.UpdatedAt = now
	const query = `INSERT INTO gigs (id, title, alt_title, event_date, start_time, end_time, fee, notes,
        lineup_html, lineup_text, is_private, venue_id, agent_id, sound_tech_id,
        contract_status, closeout_status, closeout_notes, closeout_at, created_at, updated_at)
        VALUES (:id, :title, :alt_title, :event_date, :start_time, :end_time, :fee, :notes,
        :lineup_html, :lineup_text, :is_private, :venue_id, :agent_id, :sound_tech_id,
        :contract_status, :closeout_status, :closeout_notes, :closeout_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, gig); err != nil {
		return fmt.Errorf("create gig: %w", err)
	}
	return nil
}

// Update modifies an existing gig.
func (r *GigRepository) Update(ctx context.Context, gig *models.Gig) error {
	gig.UpdatedAt = time.Now().UTC()
	const query = `UPDATE gigs SET title = :title, alt_title = :alt_title, event_date = :event_date,
        start_time = :start_time, end_time = :end_time, fee = :fee, notes = :notes,
        lineup_html = :lineup_html, lineup_text = :lineup_text, is_private = :is_private,
        venue_id = :venue_id, agent_id = :agent_id, sound_tech_id = :sound_tech_id,
        contract_status = :contract_status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, gig); err != nil {
		return fmt.Errorf("update gig: %w", err)
	}
	return nil
}

// ReplaceLineup swaps the full ordered lineup for a gig in one transaction.
func (r *GigRepository) ReplaceLineup(ctx context.Context, gigID string, slots []models.LineupSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lineup tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM gig_lineup WHERE gig_id = $1", gigID); err != nil {
		return fmt.Errorf("clear lineup: %w", err)
	}
	const insert = `INSERT INTO gig_lineup (gig_id, musician_id, position, role) VALUES ($1, $2, $3, $4)`
	for i, slot := range slots {
		if _, err := tx.ExecContext(ctx, insert, gigID, slot.MusicianID, i, slot.Role); err != nil {
			return fmt.Errorf("insert lineup slot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lineup: %w", err)
	}
	return nil
}

// UpdateCloseout moves the closeout status and notes. Entering the closed
// state stamps closeout_at; leaving it clears the stamp.
func (r *GigRepository) UpdateCloseout(ctx context.Context, id, status string, notes *string) error {
	var closedAt *time.Time
	if status == models.CloseoutClosed {
		now := time.Now().UTC()
		closedAt = &now
	}
	const query = `UPDATE gigs SET closeout_status = $2, closeout_notes = $3, closeout_at = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, notes, closedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update closeout: %w", err)
	}
	return nil
}

// ListBetween returns non-private gigs in the inclusive date range, for the
// weekly digests.
func (r *GigRepository) ListBetween(ctx context.Context, from, to string) ([]models.Gig, error) {
	query := fmt.Sprintf(`SELECT %s FROM gigs g
        WHERE g.event_date >= $1 AND g.event_date <= $2 AND g.is_private = false
        ORDER BY g.event_date ASC`, gigColumns)
	var gigs []models.Gig
	if err := r.db.SelectContext(ctx, &gigs, query, from, to); err != nil {
		return nil, fmt.Errorf("list gigs between: %w", err)
	}
	return gigs, nil
}
