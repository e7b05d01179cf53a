package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type timetableRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error)
	ListByStaff(ctx context.Context, staffID, termID string) ([]models.TimetableEntry, error)
	Create(ctx context.Context, entry *models.TimetableEntry) error
}

// CreateTimetableEntryRequest represents payload for adding a weekly slot.
type CreateTimetableEntryRequest struct {
	StaffID      string  `json:"staff_id" validate:"required,uuid"`
	ClassGroupID *string `json:"class_group_id" validate:"omitempty"`
	RoomID       *string `json:"room_id" validate:"omitempty"`
	Weekday      int     `json:"weekday" validate:"required,min=1,max=7"`
	StartTime    string  `json:"start_time" validate:"required"`
	EndTime      string  `json:"end_time" validate:"required"`
	Label        string  `json:"label" validate:"omitempty,max=50"`
	TermID       string  `json:"term_id" validate:"required"`
}

// TimetableService orchestrates timetable entry operations.
type TimetableService struct {
	repo      timetableRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// ListByTerm returns the full timetable of a term.
func (s *TimetableService) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error) {
	entries, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return entries, nil
}

// ListByStaff returns the weekly timetable of one staff member.
func (s *TimetableService) ListByStaff(ctx context.Context, staffID, termID string) ([]models.TimetableEntry, error) {
	entries, err := s.repo.ListByStaff(ctx, staffID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff timetable")
	}
	return entries, nil
}

// Create adds a weekly timetable entry.
func (s *TimetableService) Create(ctx context.Context, req CreateTimetableEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	start, okStart := clockToMinutes(req.StartTime)
	end, okEnd := clockToMinutes(req.EndTime)
	if !okStart || !okEnd || start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable slot must be a non-empty HH:MM range")
	}

	entry := &models.TimetableEntry{
		StaffID:      req.StaffID,
		ClassGroupID: req.ClassGroupID,
		RoomID:       req.RoomID,
		Weekday:      req.Weekday,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Label:        strings.ToUpper(strings.TrimSpace(req.Label)),
		TermID:       req.TermID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable entry")
	}
	return entry, nil
}
