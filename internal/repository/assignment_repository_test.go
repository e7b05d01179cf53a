package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/escola-admin/escola-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO duty_assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.DutyAssignment{
		DutyID:       "duty-1",
		StaffID:      "staff-1",
		PriorityTier: 1,
		Reason:       "freed by outing: Museum visit",
		AutoAssigned: true,
	}
	err := repo.Create(context.Background(), assignment)
	require.NoError(t, err)
	require.NotEmpty(t, assignment.ID)
	require.Equal(t, models.AssignmentStatusAssigned, assignment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO duty_assignments").
		WillReturnError(&pq.Error{Code: uniqueViolationCode})

	err := repo.Create(context.Background(), &models.DutyAssignment{DutyID: "duty-1", StaffID: "staff-1"})
	require.ErrorIs(t, err, ErrDuplicateAssignment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListForStaffInWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	from := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "duty_id", "staff_id", "priority_tier", "status", "reason", "auto_assigned", "created_at", "duty_date", "duty_category"}).
		AddRow("asg-1", "duty-1", "staff-1", 30, models.AssignmentStatusAssigned, "available", true, to, to, models.DutyCategoryPlayground)
	mock.ExpectQuery("SELECT a.id, a.duty_id").
		WithArgs("staff-1", from, to).
		WillReturnRows(rows)

	assignments, err := repo.ListForStaffInWindow(context.Background(), "staff-1", from, to)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, models.DutyCategoryPlayground, assignments[0].DutyCategory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE duty_assignments SET status = $1 WHERE id = $2")).
		WithArgs(models.AssignmentStatusAccepted, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.AssignmentStatusAccepted)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
