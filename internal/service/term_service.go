package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type termRepository interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindActive(ctx context.Context) (*models.Term, error)
}

// TermService resolves academic terms. The engine and the reporting endpoints
// operate on the active term unless a caller names one explicitly.
type TermService struct {
	repo          termRepository
	defaultTermID string
	logger        *zap.Logger
}

// NewTermService constructs a TermService. defaultTermID, when set, wins over
// the active flag in the database.
func NewTermService(repo termRepository, defaultTermID string, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, defaultTermID: defaultTermID, logger: logger}
}

// Get returns a term by id.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// Resolve returns the term identified by id, or the configured/active term
// when id is empty.
func (s *TermService) Resolve(ctx context.Context, id string) (*models.Term, error) {
	if id != "" {
		return s.Get(ctx, id)
	}
	if s.defaultTermID != "" {
		return s.Get(ctx, s.defaultTermID)
	}
	term, err := s.repo.FindActive(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active term configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}
