package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gigdesk/gigdesk-api/internal/calendar"
	"github.com/gigdesk/gigdesk-api/internal/models"
	"github.com/gigdesk/gigdesk-api/internal/notify"
	"github.com/gigdesk/gigdesk-api/internal/service"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
	"github.com/gigdesk/gigdesk-api/pkg/response"
)

// GigHandler exposes gig booking endpoints.
type GigHandler struct {
	gigs *service.GigService
}

// NewGigHandler constructs GigHandler.
func NewGigHandler(gigs *service.GigService) *GigHandler {
	return &GigHandler{gigs: gigs}
}

// List returns gigs filtered by date range and closeout status.
func (h *GigHandler) List(c *gin.Context) {
	var filter models.GigFilter
	if from := c.Query("from"); from != "" {
		filter.From = &from
	}
	if to := c.Query("to"); to != "" {
		filter.To = &to
	}
	filter.CloseoutStatus = c.Query("closeout")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	gigs, total, err := h.gigs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	response.JSON(c, http.StatusOK, gigs, &response.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// Get returns one gig with venue and lineup.
func (h *GigHandler) Get(c *gin.Context) {
	detail, err := h.gigs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create books a new gig.
func (h *GigHandler) Create(c *gin.Context) {
	var req service.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.gigs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update modifies a gig.
func (h *GigHandler) Update(c *gin.Context) {
	var req service.UpdateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.gigs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// CalendarSyncHandler pushes gigs to the shared band calendar.
type CalendarSyncHandler struct {
	engine  *calendar.Engine
	metrics *service.MetricsService
}

// NewCalendarSyncHandler constructs CalendarSyncHandler.
func NewCalendarSyncHandler(engine *calendar.Engine, metrics *service.MetricsService) *CalendarSyncHandler {
	return &CalendarSyncHandler{engine: engine, metrics: metrics}
}

type calendarSyncRequest struct {
	Calendar string `json:"calendar" binding:"required"`
}

// Sync upserts the calendar event for a gig. Failures in the pipeline come
// back as a 422 with the stage that broke; the result body is the same shape
// either way.
func (h *CalendarSyncHandler) Sync(c *gin.Context) {
	var req calendarSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "calendar is required"))
		return
	}

	start := time.Now()
	result := h.engine.Sync(c.Request.Context(), c.Param("id"), req.Calendar)
	h.metrics.ObserveSync(string(result.Outcome), time.Since(start))

	status := http.StatusOK
	if result.Outcome == calendar.OutcomeFailed {
		status = http.StatusUnprocessableEntity
	}
	response.JSON(c, status, result, nil)
}

// NotificationHandler sends gig emails and exposes the audit trail.
type NotificationHandler struct {
	notifier *notify.Notifier
	audits   *service.AuditService
	metrics  *service.MetricsService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifier *notify.Notifier, audits *service.AuditService, metrics *service.MetricsService) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, audits: audits, metrics: metrics}
}

// Notify runs one notification pass for the audience in the path.
func (h *NotificationHandler) Notify(c *gin.Context) {
	audience := c.Param("audience")
	result, err := h.notifier.Notify(c.Request.Context(), c.Param("id"), audience)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountNotifications(audience, "sent", result.Sent)
	h.metrics.CountNotifications(audience, "skipped", result.Skipped)
	h.metrics.CountNotifications(audience, "failed", result.Failed)
	response.JSON(c, http.StatusOK, result, nil)
}

// Audit returns the notification audit trail for a gig.
func (h *NotificationHandler) Audit(c *gin.Context) {
	entries, err := h.audits.ListByGig(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
