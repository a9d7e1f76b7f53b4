package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/gigdesk/gigdesk-api/internal/models"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
)

type auditRepository interface {
	ListByGig(ctx context.Context, gigID string) ([]models.EmailAudit, error)
}

// AuditService reads the notification audit trail.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService constructs the audit service.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// ListByGig returns the audit rows for a gig, newest first.
func (s *AuditService) ListByGig(ctx context.Context, gigID string) ([]models.EmailAudit, error) {
	entries, err := s.repo.ListByGig(ctx, gigID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	if entries == nil {
		entries = []models.EmailAudit{}
	}
	return entries, nil
}
