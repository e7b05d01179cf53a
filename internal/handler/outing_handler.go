package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escola-admin/escola-api/internal/service"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/response"
)

// OutingHandler wires outing services to HTTP routes.
type OutingHandler struct {
	outings *service.OutingService
	terms   *service.TermService
}

// NewOutingHandler constructs a new OutingHandler.
func NewOutingHandler(outings *service.OutingService, terms *service.TermService) *OutingHandler {
	return &OutingHandler{outings: outings, terms: terms}
}

// List returns outings of the resolved term, or the outings intersecting an
// explicit from/to date range.
func (h *OutingHandler) List(c *gin.Context) {
	if c.Query("from") != "" || c.Query("to") != "" {
		h.listOverlapping(c)
		return
	}
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	outings, err := h.outings.ListByTerm(c.Request.Context(), term.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outings, nil)
}

func (h *OutingHandler) listOverlapping(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid from date"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid to date"))
		return
	}
	outings, err := h.outings.ListOverlapping(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outings, nil)
}

// Create schedules an outing.
func (h *OutingHandler) Create(c *gin.Context) {
	var req service.CreateOutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid outing payload"))
		return
	}
	outing, err := h.outings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, outing)
}
