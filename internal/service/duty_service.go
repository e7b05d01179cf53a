package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type dutyRepository interface {
	List(ctx context.Context, filter models.DutyFilter) ([]models.DutySlot, int, error)
	FindByID(ctx context.Context, id string) (*models.DutySlot, error)
	Create(ctx context.Context, duty *models.DutySlot) error
	UpdateStatus(ctx context.Context, id string, status models.DutyStatus) error
}

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.DutyAssignment, error)
	ListByDuty(ctx context.Context, dutyID string) ([]models.DutyAssignment, error)
	UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error
}

// CreateDutyRequest represents payload for opening a duty slot.
type CreateDutyRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	Category  string  `json:"category" validate:"required,max=50"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	OutingID  *string `json:"outing_id" validate:"omitempty,uuid"`
}

// DutyService orchestrates duty slot and assignment lifecycle operations.
type DutyService struct {
	duties      dutyRepository
	assignments assignmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDutyService constructs a DutyService.
func NewDutyService(duties dutyRepository, assignments assignmentRepository, validate *validator.Validate, logger *zap.Logger) *DutyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DutyService{duties: duties, assignments: assignments, validator: validate, logger: logger}
}

// List returns duty slots plus pagination data.
func (s *DutyService) List(ctx context.Context, filter models.DutyFilter) ([]models.DutySlot, *models.Pagination, error) {
	duties, total, err := s.duties.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list duty slots")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return duties, pagination, nil
}

// Get returns a duty slot by id.
func (s *DutyService) Get(ctx context.Context, id string) (*models.DutySlot, error) {
	duty, err := s.duties.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "duty slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duty slot")
	}
	return duty, nil
}

// Create opens a new duty slot in pending state.
func (s *DutyService) Create(ctx context.Context, req CreateDutyRequest) (*models.DutySlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}
	start, okStart := clockToMinutes(req.StartTime)
	end, okEnd := clockToMinutes(req.EndTime)
	if !okStart || !okEnd || start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duty window must be a non-empty HH:MM range")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid duty date")
	}

	duty := &models.DutySlot{
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Category:  strings.ToLower(strings.TrimSpace(req.Category)),
		Status:    models.DutyStatusPending,
		Location:  req.Location,
		OutingID:  req.OutingID,
	}
	if err := s.duties.Create(ctx, duty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create duty slot")
	}
	return duty, nil
}

// UpdateStatus transitions a duty slot's lifecycle status. Only the closing
// transition is accepted here; PENDING/ASSIGNED moves belong to the engine
// and the rejection flow.
func (s *DutyService) UpdateStatus(ctx context.Context, id string, status models.DutyStatus) (*models.DutySlot, error) {
	if status != models.DutyStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only the COMPLETED transition is allowed")
	}
	duty, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if duty.Status != models.DutyStatusAssigned {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only assigned duties can be completed")
	}
	if err := s.duties.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update duty status")
	}
	duty.Status = status
	return duty, nil
}

// ListAssignments returns every assignment attached to a duty slot.
func (s *DutyService) ListAssignments(ctx context.Context, dutyID string) ([]models.DutyAssignment, error) {
	if _, err := s.Get(ctx, dutyID); err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByDuty(ctx, dutyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// AcceptAssignment confirms an assignment on behalf of its staff member.
func (s *DutyService) AcceptAssignment(ctx context.Context, assignmentID string) (*models.DutyAssignment, error) {
	return s.resolveAssignment(ctx, assignmentID, models.AssignmentStatusAccepted)
}

// RejectAssignment declines an assignment. The duty slot returns to pending
// so the engine can be re-run to find a replacement.
func (s *DutyService) RejectAssignment(ctx context.Context, assignmentID string) (*models.DutyAssignment, error) {
	assignment, err := s.resolveAssignment(ctx, assignmentID, models.AssignmentStatusRejected)
	if err != nil {
		return nil, err
	}
	if err := s.duties.UpdateStatus(ctx, assignment.DutyID, models.DutyStatusPending); err != nil {
		s.logger.Warn("failed to reopen duty after rejection",
			zap.String("duty_id", assignment.DutyID), zap.Error(err))
	}
	return assignment, nil
}

// CompleteAssignment marks an assignment as carried out. Allowed from the
// ASSIGNED and ACCEPTED states.
func (s *DutyService) CompleteAssignment(ctx context.Context, assignmentID string) (*models.DutyAssignment, error) {
	return s.resolveAssignment(ctx, assignmentID, models.AssignmentStatusCompleted)
}

// resolveAssignment applies a lifecycle transition. Accept and reject only
// move from ASSIGNED; completion also moves from ACCEPTED.
func (s *DutyService) resolveAssignment(ctx context.Context, assignmentID string, target models.AssignmentStatus) (*models.DutyAssignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	allowed := assignment.Status == models.AssignmentStatusAssigned ||
		(target == models.AssignmentStatusCompleted && assignment.Status == models.AssignmentStatusAccepted)
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "assignment already resolved")
	}
	if err := s.assignments.UpdateStatus(ctx, assignmentID, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
	}
	assignment.Status = target
	return assignment, nil
}
