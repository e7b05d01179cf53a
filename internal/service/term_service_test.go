package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type termRepoStub struct {
	terms  map[string]*models.Term
	active *models.Term
}

func (s termRepoStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if term, ok := s.terms[id]; ok {
		return term, nil
	}
	return nil, sql.ErrNoRows
}

func (s termRepoStub) FindActive(ctx context.Context) (*models.Term, error) {
	if s.active != nil {
		return s.active, nil
	}
	return nil, sql.ErrNoRows
}

func TestTermServiceResolveExplicitID(t *testing.T) {
	repo := termRepoStub{terms: map[string]*models.Term{"term-2": {ID: "term-2"}}}
	svc := NewTermService(repo, "term-1", zap.NewNop())

	term, err := svc.Resolve(context.Background(), "term-2")
	require.NoError(t, err)
	assert.Equal(t, "term-2", term.ID)
}

func TestTermServiceResolveConfiguredDefault(t *testing.T) {
	repo := termRepoStub{
		terms:  map[string]*models.Term{"term-1": {ID: "term-1"}},
		active: &models.Term{ID: "term-9"},
	}
	svc := NewTermService(repo, "term-1", zap.NewNop())

	term, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	// The configured term wins over the active flag.
	assert.Equal(t, "term-1", term.ID)
}

func TestTermServiceResolveActiveFallback(t *testing.T) {
	repo := termRepoStub{active: &models.Term{ID: "term-9"}}
	svc := NewTermService(repo, "", zap.NewNop())

	term, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "term-9", term.ID)
}

func TestTermServiceResolveNoActiveTerm(t *testing.T) {
	svc := NewTermService(termRepoStub{}, "", zap.NewNop())

	_, err := svc.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
