package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/escola-admin/escola-api/internal/models"
	"github.com/escola-admin/escola-api/internal/service"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/response"
)

// DutyHandler wires duty slot, assignment and workload services to HTTP routes.
type DutyHandler struct {
	duties   *service.DutyService
	engine   *service.DutyAssignmentService
	workload *service.WorkloadService
	terms    *service.TermService
	metrics  *service.MetricsService
}

// NewDutyHandler constructs a new DutyHandler.
func NewDutyHandler(duties *service.DutyService, engine *service.DutyAssignmentService, workload *service.WorkloadService, terms *service.TermService, metrics *service.MetricsService) *DutyHandler {
	return &DutyHandler{
		duties:   duties,
		engine:   engine,
		workload: workload,
		terms:    terms,
		metrics:  metrics,
	}
}

// List returns duty slots filtered by status and date range.
func (h *DutyHandler) List(c *gin.Context) {
	var filter models.DutyFilter
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		val := models.DutyStatus(status)
		filter.Status = &val
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &to
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	duties, pagination, err := h.duties.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duties, pagination)
}

// Get returns one duty slot.
func (h *DutyHandler) Get(c *gin.Context) {
	duty, err := h.duties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duty, nil)
}

// Create opens a new duty slot.
func (h *DutyHandler) Create(c *gin.Context) {
	var req service.CreateDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid duty payload"))
		return
	}
	duty, err := h.duties.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, duty)
}

type updateDutyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus closes out a duty slot.
func (h *DutyHandler) UpdateStatus(c *gin.Context) {
	var req updateDutyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	duty, err := h.duties.UpdateStatus(c.Request.Context(), c.Param("id"), models.DutyStatus(strings.ToUpper(req.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duty, nil)
}

// Assign runs the automatic coverage engine against one duty slot.
func (h *DutyHandler) Assign(c *gin.Context) {
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	started := time.Now()
	assignments, err := h.engine.AssignAutomatically(c.Request.Context(), term.ID, c.Param("id"))
	h.metrics.ObserveEngineRun(time.Since(started), err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil, map[string]interface{}{
		"assigned_count": len(assignments),
	})
}

// ListAssignments returns every assignment attached to a duty slot.
func (h *DutyHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.duties.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// AcceptAssignment confirms an assignment.
func (h *DutyHandler) AcceptAssignment(c *gin.Context) {
	assignment, err := h.duties.AcceptAssignment(c.Request.Context(), c.Param("aid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// RejectAssignment declines an assignment and reopens the duty.
func (h *DutyHandler) RejectAssignment(c *gin.Context) {
	assignment, err := h.duties.RejectAssignment(c.Request.Context(), c.Param("aid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CompleteAssignment marks an assignment as carried out.
func (h *DutyHandler) CompleteAssignment(c *gin.Context) {
	assignment, err := h.duties.CompleteAssignment(c.Request.Context(), c.Param("aid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// WorkloadBalance returns the per-staff workload report for a term.
func (h *DutyHandler) WorkloadBalance(c *gin.Context) {
	term, err := h.terms.Resolve(c.Request.Context(), c.Query("term_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.workload.Balance(c.Request.Context(), term.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{
		"term_id": term.ID,
	})
}
