package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/models"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
)

type closeoutGigRepository interface {
	FindByID(ctx context.Context, id string) (*models.Gig, error)
	UpdateCloseout(ctx context.Context, id, status string, notes *string) error
}

type paymentRepository interface {
	ReplaceForGig(ctx context.Context, gigID string, payments []models.GigPayment) error
	ListByGig(ctx context.Context, gigID string) ([]models.GigPayment, error)
}

// PaymentRequest is one ledger row in a closeout payload.
type PaymentRequest struct {
	Kind         string  `json:"kind" validate:"required,oneof=musician sound agent venue_receipt"`
	PayeeID      *string `json:"payee_id"`
	PayeeName    *string `json:"payee_name"`
	Role         *string `json:"role"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	FeeWithheld  float64 `json:"fee_withheld" validate:"gte=0"`
	Method       *string `json:"method"`
	Reference    *string `json:"reference"`
	DueOn        *string `json:"due_on"`
	PaidOn       *string `json:"paid_on"`
	Eligible1099 bool    `json:"eligible_1099"`
}

// SaveCloseoutRequest holds a closeout draft or final submission.
type SaveCloseoutRequest struct {
	Status   string           `json:"status" validate:"required,oneof=open draft closed"`
	Notes    *string          `json:"notes"`
	Payments []PaymentRequest `json:"payments" validate:"dive"`
}

// CloseoutView is the closeout state returned to callers.
type CloseoutView struct {
	GigID    string              `json:"gigId"`
	Status   string              `json:"status"`
	Notes    *string             `json:"notes,omitempty"`
	ClosedAt *time.Time          `json:"closedAt,omitempty"`
	Payments []models.GigPayment `json:"payments"`
}

// CloseoutService settles gigs: the payment ledger plus the closeout status
// lifecycle. A closed gig is immutable until reopened.
type CloseoutService struct {
	gigs      closeoutGigRepository
	payments  paymentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCloseoutService constructs the closeout service.
func NewCloseoutService(gigs closeoutGigRepository, payments paymentRepository, validate *validator.Validate, logger *zap.Logger) *CloseoutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloseoutService{gigs: gigs, payments: payments, validator: validate, logger: logger}
}

// Get returns the closeout state for a gig.
func (s *CloseoutService) Get(ctx context.Context, gigID string) (*CloseoutView, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByGig(ctx, gigID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	return s.view(gig, payments), nil
}

// Save stores the ledger and moves the closeout status. Saving a closed gig
// requires reopening it first; the one allowed transition out of closed is
// back to draft with no ledger changes.
func (s *CloseoutService) Save(ctx context.Context, gigID string, req SaveCloseoutRequest) (*CloseoutView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid closeout payload")
	}
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.CloseoutStatus == models.CloseoutClosed && req.Status == models.CloseoutClosed {
		return nil, appErrors.ErrGigClosed
	}

	if err := s.payments.ReplaceForGig(ctx, gigID, paymentRows(gigID, req.Payments)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save payments")
	}
	if err := s.gigs.UpdateCloseout(ctx, gigID, req.Status, req.Notes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update closeout status")
	}

	s.logger.Info("closeout saved",
		zap.String("gig_id", gigID),
		zap.String("status", req.Status),
		zap.Int("payments", len(req.Payments)))
	return s.Get(ctx, gigID)
}

// Reopen moves a closed gig back to draft so the ledger can be corrected.
func (s *CloseoutService) Reopen(ctx context.Context, gigID string) (*CloseoutView, error) {
	gig, err := s.loadGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.CloseoutStatus != models.CloseoutClosed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "gig is not closed")
	}
	if err := s.gigs.UpdateCloseout(ctx, gigID, models.CloseoutDraft, gig.CloseoutNotes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reopen closeout")
	}
	s.logger.Info("closeout reopened", zap.String("gig_id", gigID))
	return s.Get(ctx, gigID)
}

func (s *CloseoutService) loadGig(ctx context.Context, gigID string) (*models.Gig, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gig not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gig")
	}
	return gig, nil
}

func (s *CloseoutService) view(gig *models.Gig, payments []models.GigPayment) *CloseoutView {
	view := &CloseoutView{
		GigID:    gig.ID,
		Status:   gig.CloseoutStatus,
		Notes:    gig.CloseoutNotes,
		Payments: payments,
	}
	view.ClosedAt = gig.CloseoutAt
	if view.Payments == nil {
		view.Payments = []models.GigPayment{}
	}
	return view
}

func paymentRows(gigID string, reqs []PaymentRequest) []models.GigPayment {
	rows := make([]models.GigPayment, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, models.GigPayment{
			GigID:        gigID,
			Kind:         r.Kind,
			PayeeID:      r.PayeeID,
			PayeeName:    r.PayeeName,
			Role:         r.Role,
			Amount:       r.Amount,
			FeeWithheld:  r.FeeWithheld,
			Method:       r.Method,
			Reference:    r.Reference,
			DueOn:        r.DueOn,
			PaidOn:       r.PaidOn,
			Eligible1099: r.Eligible1099,
		})
	}
	return rows
}
