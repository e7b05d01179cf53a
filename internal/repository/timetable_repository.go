package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escola-admin/escola-api/internal/models"
)

// TimetableRepository manages persistence for timetable entries.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = "id, staff_id, class_group_id, room_id, weekday, start_time, end_time, label, term_id, created_at"

// ListByTerm returns the full timetable for a term.
func (r *TimetableRepository) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE term_id = $1 ORDER BY weekday ASC, start_time ASC", timetableColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID); err != nil {
		return nil, fmt.Errorf("list timetable by term: %w", err)
	}
	return entries, nil
}

// ListByStaff returns the weekly timetable of one staff member.
func (r *TimetableRepository) ListByStaff(ctx context.Context, staffID, termID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE staff_id = $1 AND term_id = $2 ORDER BY weekday ASC, start_time ASC", timetableColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, staffID, termID); err != nil {
		return nil, fmt.Errorf("list timetable by staff: %w", err)
	}
	return entries, nil
}

// Create inserts a new timetable entry.
func (r *TimetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO timetable_entries (id, staff_id, class_group_id, room_id, weekday, start_time, end_time, label, term_id, created_at)
		VALUES (:id, :staff_id, :class_group_id, :room_id, :weekday, :start_time, :end_time, :label, :term_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}
