package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escola-admin/escola-api/internal/service"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/response"
)

// TimetableHandler wires timetable services to HTTP routes.
type TimetableHandler struct {
	timetable *service.TimetableService
	terms     *service.TermService
}

// NewTimetableHandler constructs a new TimetableHandler.
func NewTimetableHandler(timetable *service.TimetableService, terms *service.TermService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, terms: terms}
}

// List returns the full timetable of the resolved term.
func (h *TimetableHandler) List(c *gin.Context) {
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.timetable.ListByTerm(c.Request.Context(), term.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create adds a weekly timetable entry.
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.CreateTimetableEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	entry, err := h.timetable.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}
