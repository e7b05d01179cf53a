package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/escola-admin/escola-api/internal/models"
)

func TestDutyRepositoryListFiltersByStatusAndRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDutyRepository(db)

	status := models.DutyStatusPending
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	filter := models.DutyFilter{Status: &status, DateFrom: &from, Page: 1, PageSize: 10}

	rows := sqlmock.NewRows([]string{"id", "date", "start_time", "end_time", "category", "status", "location", "outing_id", "created_at", "updated_at"}).
		AddRow("duty-1", from, "10:30", "11:30", models.DutyCategoryPlayground, status, nil, nil, from, from)
	mock.ExpectQuery("SELECT id, date, start_time, end_time, category, status, location, outing_id, created_at, updated_at FROM duty_slots WHERE 1=1 AND status = \\$1 AND date >= \\$2").
		WithArgs(status, from).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM duty_slots WHERE 1=1 AND status = \\$1 AND date >= \\$2").
		WithArgs(status, from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	duties, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, duties, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDutyRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDutyRepository(db)

	mock.ExpectQuery("SELECT .+ FROM duty_slots WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDutyRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDutyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE duty_slots SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(models.DutyStatusAssigned, sqlmock.AnyArg(), "duty-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "duty-1", models.DutyStatusAssigned)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryListOverlapping(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOutingRepository(db)

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "staff_id", "class_group_id", "start_date", "end_date", "term_id", "created_at"}).
		AddRow("outing-1", "Museum visit", "staff-1", "cg-1", day, day, "term-1", day)
	// A single-day probe passes the date as both bounds.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, staff_id, class_group_id, start_date, end_date, term_id, created_at FROM outings WHERE start_date <= $1 AND end_date >= $2")).
		WithArgs(day, day).
		WillReturnRows(rows)

	outings, err := repo.ListOverlapping(context.Background(), day, day)
	require.NoError(t, err)
	require.Len(t, outings, 1)
	require.Equal(t, "Museum visit", outings[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
