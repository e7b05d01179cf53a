package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/escola-admin/escola-api/internal/models"
	"github.com/escola-admin/escola-api/internal/service"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/response"
)

// StaffHandler wires staff services to HTTP routes.
type StaffHandler struct {
	staff     *service.StaffService
	timetable *service.TimetableService
	terms     *service.TermService
}

// NewStaffHandler constructs a new StaffHandler.
func NewStaffHandler(staff *service.StaffService, timetable *service.TimetableService, terms *service.TermService) *StaffHandler {
	return &StaffHandler{staff: staff, timetable: timetable, terms: terms}
}

// List returns staff members of the resolved term.
func (h *StaffHandler) List(c *gin.Context) {
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := models.StaffFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if active := c.Query("active"); active != "" {
		switch strings.ToLower(active) {
		case "true":
			val := true
			filter.Active = &val
		case "false":
			val := false
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	staff, pagination, err := h.staff.List(c.Request.Context(), term.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, staff, pagination)
}

// Get returns one staff member.
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create registers a staff member.
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update modifies a staff member.
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid staff payload"))
		return
	}
	member, err := h.staff.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Timetable returns the weekly timetable of one staff member.
func (h *StaffHandler) Timetable(c *gin.Context) {
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.timetable.ListByStaff(c.Request.Context(), c.Param("id"), term.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
