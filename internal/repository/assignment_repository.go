package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/escola-admin/escola-api/internal/models"
)

// ErrDuplicateAssignment signals that a (duty, staff) pairing already exists.
// The unique constraint on duty_assignments(duty_id, staff_id) is the final
// backstop against concurrent double assignment.
var ErrDuplicateAssignment = errors.New("duty assignment already exists")

const uniqueViolationCode = "23505"

// AssignmentRepository manages persistence for duty assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = "id, duty_id, staff_id, priority_tier, status, reason, auto_assigned, created_at"

// ListByDuty returns every assignment attached to a duty slot.
func (r *AssignmentRepository) ListByDuty(ctx context.Context, dutyID string) ([]models.DutyAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM duty_assignments WHERE duty_id = $1 ORDER BY priority_tier ASC, created_at ASC", assignmentColumns)
	var assignments []models.DutyAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, dutyID); err != nil {
		return nil, fmt.Errorf("list assignments by duty: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.DutyAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM duty_assignments WHERE id = $1", assignmentColumns)
	var assignment models.DutyAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListForStaffInWindow returns a staff member's assignments whose duty date
// falls inside [from, to], joined with the duty's date and category for
// workload scoring.
func (r *AssignmentRepository) ListForStaffInWindow(ctx context.Context, staffID string, from, to time.Time) ([]models.AssignmentWithDuty, error) {
	const query = `
SELECT a.id, a.duty_id, a.staff_id, a.priority_tier, a.status, a.reason, a.auto_assigned, a.created_at,
       d.date AS duty_date, d.category AS duty_category
FROM duty_assignments a
JOIN duty_slots d ON d.id = a.duty_id
WHERE a.staff_id = $1 AND d.date >= $2 AND d.date <= $3
ORDER BY d.date DESC`
	var assignments []models.AssignmentWithDuty
	if err := r.db.SelectContext(ctx, &assignments, query, staffID, from, to); err != nil {
		return nil, fmt.Errorf("list assignments in window: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment row. A unique-constraint violation on
// (duty_id, staff_id) is reported as ErrDuplicateAssignment so callers can
// treat the pairing as already covered instead of failing the invocation.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.DutyAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusAssigned
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO duty_assignments (id, duty_id, staff_id, priority_tier, status, reason, auto_assigned, created_at)
		VALUES (:id, :duty_id, :staff_id, :priority_tier, :status, :reason, :auto_assigned, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return ErrDuplicateAssignment
		}
		return fmt.Errorf("create duty assignment: %w", err)
	}
	return nil
}

// UpdateStatus transitions an assignment's lifecycle status.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	const query = `UPDATE duty_assignments SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
