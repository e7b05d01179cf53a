package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
)

type workloadScorerStub struct {
	scores map[string]int
	err    error
}

func (s workloadScorerStub) Score(ctx context.Context, staffID string) (int, int, error) {
	if s.err != nil {
		return 0, 0, s.err
	}
	return s.scores[staffID], 0, nil
}

func strPtr(v string) *string { return &v }

// Monday, so ISO weekday 1.
var testDutyDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func testContext() models.AssignmentContext {
	return models.AssignmentContext{
		Duty: models.DutySlot{
			ID:        "duty-1",
			Date:      testDutyDate,
			StartTime: "10:30",
			EndTime:   "11:30",
			Category:  models.DutyCategoryPlayground,
			Status:    models.DutyStatusPending,
		},
	}
}

func TestClassifyFreedByOuting(t *testing.T) {
	actx := testContext()
	actx.Outings = []models.Outing{{
		ID: "outing-1", Name: "Museum visit", ClassGroupID: "cg-1",
		StartDate: testDutyDate, EndDate: testDutyDate,
	}}
	actx.Timetable = []models.TimetableEntry{{
		StaffID: "staff-1", ClassGroupID: strPtr("cg-1"),
		Weekday: 1, StartTime: "10:00", EndTime: "11:00",
	}}

	classifier := NewPriorityClassifier(workloadScorerStub{scores: map[string]int{"staff-1": 25}}, false, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, actx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, TierFreedByOuting, candidate.Tier)
	assert.Equal(t, "freed by outing: Museum visit", candidate.Reason)
	assert.Equal(t, 25, candidate.WorkloadScore)
}

func TestClassifyOutingOutsideDutyWindow(t *testing.T) {
	actx := testContext()
	// Outing covers the date but the freed slot does not touch the duty window.
	actx.Outings = []models.Outing{{
		ID: "outing-1", Name: "Museum visit", ClassGroupID: "cg-1",
		StartDate: testDutyDate, EndDate: testDutyDate,
	}}
	actx.Timetable = []models.TimetableEntry{{
		StaffID: "staff-1", ClassGroupID: strPtr("cg-1"),
		Weekday: 1, StartTime: "08:00", EndTime: "09:00",
	}}

	classifier := NewPriorityClassifier(workloadScorerStub{}, false, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, actx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, TierAvailableBase, candidate.Tier)
}

func TestClassifyOnDutyTimetable(t *testing.T) {
	actx := testContext()
	actx.Timetable = []models.TimetableEntry{{
		StaffID: "staff-1", Label: models.TimetableLabelOnDuty,
		Weekday: 1, StartTime: "10:00", EndTime: "12:00",
	}}

	classifier := NewPriorityClassifier(workloadScorerStub{}, false, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, actx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, TierOnDutyTimetable, candidate.Tier)
	assert.Equal(t, "duty assigned in timetable", candidate.Reason)
}

func TestClassifyAdministrativeRole(t *testing.T) {
	classifier := NewPriorityClassifier(workloadScorerStub{}, false, zap.NewNop())
	member := models.StaffMember{ID: "staff-1", Role: strPtr(models.RoleCoordinator)}

	candidate, err := classifier.Classify(context.Background(), member, testContext())
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, TierAdministrativeRole, candidate.Tier)
	assert.Equal(t, "administrative role: COORDINATOR", candidate.Reason)
}

func TestClassifyOutingBeatsAdministrativeRole(t *testing.T) {
	actx := testContext()
	actx.Outings = []models.Outing{{
		ID: "outing-1", Name: "Ski week", ClassGroupID: "cg-1",
		StartDate: testDutyDate.AddDate(0, 0, -2), EndDate: testDutyDate.AddDate(0, 0, 2),
	}}
	actx.Timetable = []models.TimetableEntry{{
		StaffID: "staff-1", ClassGroupID: strPtr("cg-1"),
		Weekday: 1, StartTime: "10:00", EndTime: "12:00",
	}}
	member := models.StaffMember{ID: "staff-1", Role: strPtr(models.RoleDirector)}

	classifier := NewPriorityClassifier(workloadScorerStub{}, false, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), member, actx)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, TierFreedByOuting, candidate.Tier)
}

func TestClassifyFallbackTierGrowsWithWorkload(t *testing.T) {
	classifier := NewPriorityClassifier(workloadScorerStub{scores: map[string]int{
		"light": 5,
		"heavy": 47,
	}}, false, zap.NewNop())

	light, err := classifier.Classify(context.Background(), models.StaffMember{ID: "light"}, testContext())
	require.NoError(t, err)
	heavy, err := classifier.Classify(context.Background(), models.StaffMember{ID: "heavy"}, testContext())
	require.NoError(t, err)

	assert.Equal(t, TierAvailableBase, light.Tier)
	assert.Equal(t, TierAvailableBase+4, heavy.Tier)
	assert.Less(t, light.Tier, heavy.Tier)
}

func TestClassifySkipsAlreadyAssigned(t *testing.T) {
	actx := testContext()
	actx.Existing = []models.DutyAssignment{{DutyID: "duty-1", StaffID: "staff-1"}}

	classifier := NewPriorityClassifier(workloadScorerStub{}, false, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, actx)
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestClassifyWorkloadErrorPropagates(t *testing.T) {
	classifier := NewPriorityClassifier(workloadScorerStub{err: errors.New("db down")}, false, zap.NewNop())
	_, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, testContext())
	require.Error(t, err)
}

func TestClassifyWorkloadErrorDegrades(t *testing.T) {
	classifier := NewPriorityClassifier(workloadScorerStub{err: errors.New("db down")}, true, zap.NewNop())
	candidate, err := classifier.Classify(context.Background(), models.StaffMember{ID: "staff-1"}, testContext())
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, 0, candidate.WorkloadScore)
	assert.Equal(t, TierAvailableBase, candidate.Tier)
}
