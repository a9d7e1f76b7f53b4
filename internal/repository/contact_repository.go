package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

// ContactRepository resolves the people attached to a gig: agents, sound
// techs and musicians.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository constructs a ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// FindAgent fetches an agent by ID.
func (r *ContactRepository) FindAgent(ctx context.Context, id string) (*models.Agent, error) {
	const query = `SELECT id, display_name, email FROM agents WHERE id = $1`
	var agent models.Agent
	if err := r.db.GetContext(ctx, &agent, query, id); err != nil {
		return nil, fmt.Errorf("find agent: %w", err)
	}
	return &agent, nil
}

// FindSoundTech fetches a sound tech by ID.
func (r *ContactRepository) FindSoundTech(ctx context.Context, id string) (*models.SoundTech, error) {
	const query = `SELECT id, display_name, email FROM sound_techs WHERE id = $1`
	var tech models.SoundTech
	if err := r.db.GetContext(ctx, &tech, query, id); err != nil {
		return nil, fmt.Errorf("find sound tech: %w", err)
	}
	return &tech, nil
}

// ListMusicians fetches musicians by ID, preserving no particular order.
func (r *ContactRepository) ListMusicians(ctx context.Context, ids []string) ([]models.Musician, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id, display_name, email FROM musicians WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build musician query: %w", err)
	}
	query = r.db.Rebind(query)

	var musicians []models.Musician
	if err := r.db.SelectContext(ctx, &musicians, query, args...); err != nil {
		return nil, fmt.Errorf("list musicians: %w", err)
	}
	return musicians, nil
}
