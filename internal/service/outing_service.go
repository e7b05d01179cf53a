package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type outingRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.Outing, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Outing, error)
	Create(ctx context.Context, outing *models.Outing) error
}

// CreateOutingRequest represents payload for scheduling an outing.
type CreateOutingRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	StaffID      string `json:"staff_id" validate:"required,uuid"`
	ClassGroupID string `json:"class_group_id" validate:"required"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
	TermID       string `json:"term_id" validate:"required"`
}

// OutingService orchestrates class-group outing operations.
type OutingService struct {
	repo      outingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOutingService constructs an OutingService.
func NewOutingService(repo outingRepository, validate *validator.Validate, logger *zap.Logger) *OutingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutingService{repo: repo, validator: validate, logger: logger}
}

// ListByTerm returns the outings scheduled in a term.
func (s *OutingService) ListByTerm(ctx context.Context, termID string) ([]models.Outing, error) {
	outings, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outings")
	}
	return outings, nil
}

// ListOverlapping returns outings whose date range intersects [from, to].
func (s *OutingService) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Outing, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end precedes range start")
	}
	outings, err := s.repo.ListOverlapping(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outings")
	}
	return outings, nil
}

// Create schedules a new outing.
func (s *OutingService) Create(ctx context.Context, req CreateOutingRequest) (*models.Outing, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid outing payload")
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid outing start date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid outing end date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outing end date precedes start date")
	}

	outing := &models.Outing{
		Name:         strings.TrimSpace(req.Name),
		StaffID:      req.StaffID,
		ClassGroupID: req.ClassGroupID,
		StartDate:    start,
		EndDate:      end,
		TermID:       req.TermID,
	}
	if err := s.repo.Create(ctx, outing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create outing")
	}
	return outing, nil
}
