package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escola-admin/escola-api/internal/models"
)

// DutyRepository manages persistence for duty slots.
type DutyRepository struct {
	db *sqlx.DB
}

// NewDutyRepository constructs a DutyRepository.
func NewDutyRepository(db *sqlx.DB) *DutyRepository {
	return &DutyRepository{db: db}
}

const dutyColumns = "id, date, start_time, end_time, category, status, location, outing_id, created_at, updated_at"

// List returns duty slots matching filters along with total count.
func (r *DutyRepository) List(ctx context.Context, filter models.DutyFilter) ([]models.DutySlot, int, error) {
	base := "FROM duty_slots WHERE 1=1"
	var args []interface{}

	if filter.Status != nil {
		base += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		base += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		base += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *filter.DateTo)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date ASC, start_time ASC LIMIT %d OFFSET %d", dutyColumns, base, size, offset)
	var duties []models.DutySlot
	if err := r.db.SelectContext(ctx, &duties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list duty slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count duty slots: %w", err)
	}

	return duties, total, nil
}

// FindByID fetches a duty slot by ID.
func (r *DutyRepository) FindByID(ctx context.Context, id string) (*models.DutySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM duty_slots WHERE id = $1", dutyColumns)
	var duty models.DutySlot
	if err := r.db.GetContext(ctx, &duty, query, id); err != nil {
		return nil, err
	}
	return &duty, nil
}

// Create inserts a new duty slot in pending state.
func (r *DutyRepository) Create(ctx context.Context, duty *models.DutySlot) error {
	if duty.ID == "" {
		duty.ID = uuid.NewString()
	}
	if duty.Status == "" {
		duty.Status = models.DutyStatusPending
	}
	now := time.Now().UTC()
	duty.CreatedAt = now
	duty.UpdatedAt = now
	const query = `INSERT INTO duty_slots (id, date, start_time, end_time, category, status, location, outing_id, created_at, updated_at)
		VALUES (:id, :date, :start_time, :end_time, :category, :status, :location, :outing_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, duty); err != nil {
		return fmt.Errorf("create duty slot: %w", err)
	}
	return nil
}

// UpdateStatus transitions a duty slot's lifecycle status.
func (r *DutyRepository) UpdateStatus(ctx context.Context, id string, status models.DutyStatus) error {
	const query = `UPDATE duty_slots SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update duty status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated duty rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
