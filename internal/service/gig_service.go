package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/models"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
)

type gigRepository interface {
	List(ctx context.Context, filter models.GigFilter) ([]models.Gig, int, error)
	FindByID(ctx context.Context, id string) (*models.Gig, error)
	FindDetail(ctx context.Context, id string) (models.GigDetail, error)
	Create(ctx context.Context, gig *models.Gig) error
	Update(ctx context.Context, gig *models.Gig) error
	ReplaceLineup(ctx context.Context, gigID string, slots []models.LineupSlot) error
}

// LineupSlotRequest is one roster entry in a gig payload.
type LineupSlotRequest struct {
	MusicianID string `json:"musician_id" validate:"required"`
	Role       string `json:"role"`
}

// CreateGigRequest holds payload for creating gigs.
type CreateGigRequest struct {
	Title       *string             `json:"title"`
	AltTitle    *string             `json:"alt_title"`
	EventDate   string              `json:"event_date" validate:"required"`
	StartTime   *string             `json:"start_time"`
	EndTime     *string             `json:"end_time"`
	Fee         *float64            `json:"fee" validate:"omitempty,gte=0"`
	Notes       *string             `json:"notes"`
	IsPrivate   bool                `json:"is_private"`
	VenueID     *string             `json:"venue_id"`
	AgentID     *string             `json:"agent_id"`
	SoundTechID *string             `json:"sound_tech_id"`
	Lineup      []LineupSlotRequest `json:"lineup" validate:"dive"`
}

// UpdateGigRequest holds payload for updating gigs.
type UpdateGigRequest struct {
	Title       *string             `json:"title"`
	AltTitle    *string             `json:"alt_title"`
	EventDate   string              `json:"event_date" validate:"required"`
	StartTime   *string             `json:"start_time"`
	EndTime     *string             `json:"end_time"`
	Fee         *float64            `json:"fee" validate:"omitempty,gte=0"`
	Notes       *string             `json:"notes"`
	IsPrivate   bool                `json:"is_private"`
	VenueID     *string             `json:"venue_id"`
	AgentID     *string             `json:"agent_id"`
	SoundTechID *string             `json:"sound_tech_id"`
	Lineup      []LineupSlotRequest `json:"lineup" validate:"dive"`
}

// GigService handles gig booking use-cases.
type GigService struct {
	repo      gigRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGigService constructs the gig service.
func NewGigService(repo gigRepository, validate *validator.Validate, logger *zap.Logger) *GigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GigService{repo: repo, validator: validate, logger: logger}
}

// List returns gigs and the total match count.
func (s *GigService) List(ctx context.Context, filter models.GigFilter) ([]models.Gig, int, error) {
	gigs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gigs")
	}
	return gigs, total, nil
}

// Get returns the full gig detail with venue and lineup.
func (s *GigService) Get(ctx context.Context, id string) (*models.GigDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gig not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gig")
	}
	return &detail, nil
}

// Create books a new gig.
func (s *GigService) Create(ctx context.Context, req CreateGigRequest) (*models.GigDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gig payload")
	}
	gig := &models.Gig{
		Title:          req.Title,
		AltTitle:       req.AltTitle,
		EventDate:      req.EventDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Fee:            req.Fee,
		Notes:          req.Notes,
		IsPrivate:      req.IsPrivate,
		VenueID:        req.VenueID,
		AgentID:        req.AgentID,
		SoundTechID:    req.SoundTechID,
		CloseoutStatus: models.CloseoutOpen,
	}
	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create gig")
	}
	if len(req.Lineup) > 0 {
		if err := s.repo.ReplaceLineup(ctx, gig.ID, lineupSlots(req.Lineup)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lineup")
		}
	}
	detail, err := s.repo.FindDetail(ctx, gig.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload gig")
	}
	return &detail, nil
}

// Update modifies an existing gig. Closed gigs are immutable.
func (s *GigService) Update(ctx context.Context, id string, req UpdateGigRequest) (*models.GigDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gig payload")
	}
	gig, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gig not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gig")
	}
	if gig.CloseoutStatus == models.CloseoutClosed {
		return nil, appErrors.ErrGigClosed
	}

	gig.Title = req.Title
	gig.AltTitle = req.AltTitle
	gig.EventDate = req.EventDate
	gig.StartTime = req.StartTime
	gig.EndTime = req.EndTime
	gig.Fee = req.Fee
	gig.Notes = req.Notes
	gig.IsPrivate = req.IsPrivate
	gig.VenueID = req.VenueID
	gig.AgentID = req.AgentID
	gig.SoundTechID = req.SoundTechID
	if err := s.repo.Update(ctx, gig); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update gig")
	}
	if req.Lineup != nil {
		if err := s.repo.ReplaceLineup(ctx, id, lineupSlots(req.Lineup)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lineup")
		}
	}
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload gig")
	}
	return &detail, nil
}

func lineupSlots(reqs []LineupSlotRequest) []models.LineupSlot {
	slots := make([]models.LineupSlot, 0, len(reqs))
	for _, r := range reqs {
		slots = append(slots, models.LineupSlot{MusicianID: r.MusicianID, Role: r.Role})
	}
	return slots
}
