package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigdesk/gigdesk-api/internal/contract"
	"github.com/gigdesk/gigdesk-api/internal/notify"
	"github.com/gigdesk/gigdesk-api/internal/schedule"
	"github.com/gigdesk/gigdesk-api/internal/service"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
	"github.com/gigdesk/gigdesk-api/pkg/response"
)

// ArtifactHandler serves downloadable gig artifacts: the ICS invite and the
// contract PDF.
type ArtifactHandler struct {
	gigs      *service.GigService
	contracts *contract.Renderer
	zone      *time.Location
	organizer string
}

// NewArtifactHandler constructs ArtifactHandler.
func NewArtifactHandler(gigs *service.GigService, contracts *contract.Renderer, zone *time.Location, organizer string) *ArtifactHandler {
	if zone == nil {
		zone = schedule.DefaultZone()
	}
	return &ArtifactHandler{gigs: gigs, contracts: contracts, zone: zone, organizer: organizer}
}

// Invite streams the gig's ICS invite as a download.
func (h *ArtifactHandler) Invite(c *gin.Context) {
	detail, err := h.gigs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	att, err := notify.InviteAttachment(*detail, h.zone, h.organizer)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "gig date cannot be resolved"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+att.Filename+`"`)
	c.Data(200, att.ContentType, att.Content)
}

// Contract streams the performance contract PDF.
func (h *ArtifactHandler) Contract(c *gin.Context) {
	detail, err := h.gigs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	pdf, err := h.contracts.Render(*detail)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "gig date cannot be resolved"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="contract-`+detail.ID+`.pdf"`)
	c.Data(200, "application/pdf", pdf)
}
