package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escola-admin/escola-api/internal/models"
)

// OutingRepository manages persistence for class-group outings.
type OutingRepository struct {
	db *sqlx.DB
}

// NewOutingRepository constructs an OutingRepository.
func NewOutingRepository(db *sqlx.DB) *OutingRepository {
	return &OutingRepository{db: db}
}

const outingColumns = "id, name, staff_id, class_group_id, start_date, end_date, term_id, created_at"

// ListOverlapping returns outings whose date range intersects [from, to].
func (r *OutingRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Outing, error) {
	query := fmt.Sprintf("SELECT %s FROM outings WHERE start_date <= $1 AND end_date >= $2 ORDER BY start_date ASC", outingColumns)
	var outings []models.Outing
	if err := r.db.SelectContext(ctx, &outings, query, to, from); err != nil {
		return nil, fmt.Errorf("list overlapping outings: %w", err)
	}
	return outings, nil
}

// ListByTerm returns outings of a term.
func (r *OutingRepository) ListByTerm(ctx context.Context, termID string) ([]models.Outing, error) {
	query := fmt.Sprintf("SELECT %s FROM outings WHERE term_id = $1 ORDER BY start_date ASC", outingColumns)
	var outings []models.Outing
	if err := r.db.SelectContext(ctx, &outings, query, termID); err != nil {
		return nil, fmt.Errorf("list outings by term: %w", err)
	}
	return outings, nil
}

// Create inserts a new outing.
func (r *OutingRepository) Create(ctx context.Context, outing *models.Outing) error {
	if outing.ID == "" {
		outing.ID = uuid.NewString()
	}
	outing.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO outings (id, name, staff_id, class_group_id, start_date, end_date, term_id, created_at)
		VALUES (:id, :name, :staff_id, :class_group_id, :start_date, :end_date, :term_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, outing); err != nil {
		return fmt.Errorf("create outing: %w", err)
	}
	return nil
}
