package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gigdesk/gigdesk-api/internal/service"
	appErrors "github.com/gigdesk/gigdesk-api/pkg/errors"
	"github.com/gigdesk/gigdesk-api/pkg/response"
)

// CloseoutHandler exposes gig settlement endpoints.
type CloseoutHandler struct {
	closeouts *service.CloseoutService
}

// NewCloseoutHandler constructs CloseoutHandler.
func NewCloseoutHandler(closeouts *service.CloseoutService) *CloseoutHandler {
	return &CloseoutHandler{closeouts: closeouts}
}

// Get returns the closeout ledger and status for a gig.
func (h *CloseoutHandler) Get(c *gin.Context) {
	view, err := h.closeouts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Save stores the closeout ledger and moves the status.
func (h *CloseoutHandler) Save(c *gin.Context) {
	var req service.SaveCloseoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.closeouts.Save(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Reopen moves a closed gig back to draft.
func (h *CloseoutHandler) Reopen(c *gin.Context) {
	view, err := h.closeouts.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
