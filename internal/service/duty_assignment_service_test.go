package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	"github.com/escola-admin/escola-api/internal/repository"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/jobs"
)

type dutyStoreStub struct {
	duty          *models.DutySlot
	findErr       error
	statusErr     error
	statusChanges []models.DutyStatus
}

func (s *dutyStoreStub) FindByID(ctx context.Context, id string) (*models.DutySlot, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.duty, nil
}

func (s *dutyStoreStub) UpdateStatus(ctx context.Context, id string, status models.DutyStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusChanges = append(s.statusChanges, status)
	return nil
}

type outingListerStub struct {
	outings []models.Outing
	err     error
}

func (s outingListerStub) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Outing, error) {
	return s.outings, s.err
}

type assignmentStoreStub struct {
	existing  []models.DutyAssignment
	listErr   error
	createErr map[string]error
	created   []models.DutyAssignment
}

func (s *assignmentStoreStub) ListByDuty(ctx context.Context, dutyID string) ([]models.DutyAssignment, error) {
	return s.existing, s.listErr
}

func (s *assignmentStoreStub) Create(ctx context.Context, assignment *models.DutyAssignment) error {
	if err, ok := s.createErr[assignment.StaffID]; ok {
		return err
	}
	s.created = append(s.created, *assignment)
	return nil
}

type timetableListerStub struct {
	entries []models.TimetableEntry
	err     error
}

func (s timetableListerStub) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error) {
	return s.entries, s.err
}

type classifierStub struct {
	candidates map[string]*models.Candidate
}

func (s classifierStub) Classify(ctx context.Context, member models.StaffMember, actx models.AssignmentContext) (*models.Candidate, error) {
	if actx.AlreadyAssigned(member.ID) {
		return nil, nil
	}
	return s.candidates[member.ID], nil
}

type notifierStub struct {
	notified    []string
	summaries   []string
	notifyErr   error
	coordinated int
}

func (s *notifierStub) Notify(ctx context.Context, staffID, message string) error {
	if s.notifyErr != nil {
		return s.notifyErr
	}
	s.notified = append(s.notified, staffID)
	return nil
}

func (s *notifierStub) NotifyCoordinator(ctx context.Context, message string) error {
	s.coordinated++
	s.summaries = append(s.summaries, message)
	return nil
}

type recorderStub struct {
	records []string
}

func (s *recorderStub) RecordAutoAssignment(dutyID, staffID, category string, tier int) {
	s.records = append(s.records, staffID)
}

// inlineQueue runs tasks synchronously so post-commit effects are observable
// without a running dispatcher.
type inlineQueue struct {
	kinds []string
}

func (q *inlineQueue) Enqueue(task jobs.Task) error {
	q.kinds = append(q.kinds, task.Kind)
	return task.Run(context.Background())
}

type engineFixture struct {
	duties      *dutyStoreStub
	staff       staffListerStub
	outings     outingListerStub
	assignments *assignmentStoreStub
	timetable   timetableListerStub
	classifier  candidateClassifier
	notifier    *notifierStub
	recorder    *recorderStub
	queue       *inlineQueue
}

func newEngineFixture() *engineFixture {
	return &engineFixture{
		duties: &dutyStoreStub{duty: &models.DutySlot{
			ID:        "duty-1",
			Date:      testDutyDate,
			StartTime: "10:30",
			EndTime:   "11:30",
			Category:  models.DutyCategoryPlayground,
			Status:    models.DutyStatusPending,
		}},
		assignments: &assignmentStoreStub{},
		notifier:    &notifierStub{},
		recorder:    &recorderStub{},
		queue:       &inlineQueue{},
	}
}

func (f *engineFixture) service() *DutyAssignmentService {
	return NewDutyAssignmentService(
		f.duties, f.staff, f.outings, f.assignments, f.timetable,
		f.classifier, f.notifier, f.recorder, f.queue,
		DefaultStaffingPolicy(), zap.NewNop(),
	)
}

func TestAssignAutomaticallySelectsByTier(t *testing.T) {
	f := newEngineFixture()
	f.staff = staffListerStub{staff: []models.StaffMember{
		{ID: "staff-1", FullName: "Anna"},
		{ID: "staff-2", FullName: "Bernat"},
		{ID: "staff-3", FullName: "Clara"},
	}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-1": {StaffID: "staff-1", Tier: TierAvailableBase, Reason: "available"},
		"staff-2": {StaffID: "staff-2", Tier: TierFreedByOuting, Reason: "freed by outing: Museum visit"},
		"staff-3": {StaffID: "staff-3", Tier: TierAdministrativeRole, Reason: "administrative role: DIRECTOR"},
	}}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	// Playground needs two people; the two lowest tiers win.
	require.Len(t, created, 2)
	assert.Equal(t, "staff-2", created[0].StaffID)
	assert.Equal(t, TierFreedByOuting, created[0].PriorityTier)
	assert.Equal(t, "staff-3", created[1].StaffID)
	assert.True(t, created[0].AutoAssigned)

	assert.Equal(t, []models.DutyStatus{models.DutyStatusAssigned}, f.duties.statusChanges)
	assert.ElementsMatch(t, []string{"staff-2", "staff-3"}, f.notifier.notified)
	assert.Equal(t, 1, f.notifier.coordinated)
	assert.ElementsMatch(t, []string{"staff-2", "staff-3"}, f.recorder.records)
	assert.Contains(t, f.notifier.summaries[0], "Bernat, Clara")
}

func TestAssignAutomaticallyBreaksTiesOnWorkload(t *testing.T) {
	f := newEngineFixture()
	f.duties.duty.Category = models.DutyCategoryLibrary // needs one person
	f.staff = staffListerStub{staff: []models.StaffMember{
		{ID: "staff-1"}, {ID: "staff-2"},
	}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-1": {StaffID: "staff-1", Tier: TierAdministrativeRole, WorkloadScore: 40},
		"staff-2": {StaffID: "staff-2", Tier: TierAdministrativeRole, WorkloadScore: 10},
	}}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "staff-2", created[0].StaffID)
}

func TestAssignAutomaticallyIdempotentWhenCovered(t *testing.T) {
	f := newEngineFixture()
	f.assignments.existing = []models.DutyAssignment{
		{DutyID: "duty-1", StaffID: "staff-1"},
		{DutyID: "duty-1", StaffID: "staff-2"},
	}
	f.classifier = classifierStub{}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, f.assignments.created)
	assert.Empty(t, f.duties.statusChanges)
	assert.Empty(t, f.queue.kinds)
}

func TestAssignAutomaticallyRefillsRejectedSeat(t *testing.T) {
	f := newEngineFixture()
	f.duties.duty.Category = models.DutyCategoryLibrary // needs one person
	f.assignments.existing = []models.DutyAssignment{
		{DutyID: "duty-1", StaffID: "staff-1", Status: models.AssignmentStatusRejected},
	}
	f.staff = staffListerStub{staff: []models.StaffMember{
		{ID: "staff-1", FullName: "Anna"},
		{ID: "staff-2", FullName: "Bernat"},
	}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-1": {StaffID: "staff-1", Tier: TierFreedByOuting},
		"staff-2": {StaffID: "staff-2", Tier: TierAvailableBase},
	}}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	// The rejected row does not hold the seat, and the rejecter is not
	// picked again even with a better tier.
	require.Len(t, created, 1)
	assert.Equal(t, "staff-2", created[0].StaffID)
	assert.Equal(t, []models.DutyStatus{models.DutyStatusAssigned}, f.duties.statusChanges)
}

func TestAssignAutomaticallyTopsUpPartialCoverage(t *testing.T) {
	f := newEngineFixture()
	f.assignments.existing = []models.DutyAssignment{{DutyID: "duty-1", StaffID: "staff-1"}}
	f.staff = staffListerStub{staff: []models.StaffMember{
		{ID: "staff-1"}, {ID: "staff-2"}, {ID: "staff-3"},
	}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-2": {StaffID: "staff-2", Tier: TierAvailableBase},
		"staff-3": {StaffID: "staff-3", Tier: TierAvailableBase + 1},
	}}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	// One seat already taken, only one more is filled.
	require.Len(t, created, 1)
	assert.Equal(t, "staff-2", created[0].StaffID)
}

func TestAssignAutomaticallySkipsDuplicateRows(t *testing.T) {
	f := newEngineFixture()
	f.duties.duty.Category = models.DutyCategoryLibrary
	f.staff = staffListerStub{staff: []models.StaffMember{{ID: "staff-1"}}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-1": {StaffID: "staff-1", Tier: TierAvailableBase},
	}}
	f.assignments.createErr = map[string]error{"staff-1": repository.ErrDuplicateAssignment}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, f.duties.statusChanges)
}

func TestAssignAutomaticallyNoEligibleStaff(t *testing.T) {
	f := newEngineFixture()
	f.classifier = classifierStub{}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, f.duties.statusChanges)
}

func TestAssignAutomaticallyDutyNotFound(t *testing.T) {
	f := newEngineFixture()
	f.duties.findErr = sql.ErrNoRows
	f.classifier = classifierStub{}

	_, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignAutomaticallyContextLoadFailure(t *testing.T) {
	f := newEngineFixture()
	f.outings = outingListerStub{err: errors.New("db down")}
	f.classifier = classifierStub{}

	_, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDataAccess.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.assignments.created)
}

func TestAssignAutomaticallyStatusTransitionFailure(t *testing.T) {
	f := newEngineFixture()
	f.duties.duty.Category = models.DutyCategoryLibrary
	f.duties.statusErr = errors.New("db down")
	f.staff = staffListerStub{staff: []models.StaffMember{{ID: "staff-1"}}}
	f.classifier = classifierStub{candidates: map[string]*models.Candidate{
		"staff-1": {StaffID: "staff-1", Tier: TierAvailableBase},
	}}

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.Error(t, err)
	// Rows created before the failed transition are reported to the caller.
	require.Len(t, created, 1)
	// The post-commit tail is not dispatched on a failed transition.
	assert.Empty(t, f.queue.kinds)
}

func TestAssignAutomaticallyWithRealClassifier(t *testing.T) {
	f := newEngineFixture()
	f.staff = staffListerStub{staff: []models.StaffMember{
		{ID: "staff-free", FullName: "Anna"},
		{ID: "staff-admin", FullName: "Bernat", Role: strPtr(models.RoleHeadOfStudies)},
		{ID: "staff-plain", FullName: "Clara"},
	}}
	f.outings = outingListerStub{outings: []models.Outing{{
		ID: "outing-1", Name: "Farm visit", ClassGroupID: "cg-2",
		StartDate: testDutyDate, EndDate: testDutyDate,
	}}}
	f.timetable = timetableListerStub{entries: []models.TimetableEntry{{
		StaffID: "staff-free", ClassGroupID: strPtr("cg-2"),
		Weekday: 1, StartTime: "10:00", EndTime: "11:00",
	}}}
	f.classifier = NewPriorityClassifier(workloadScorerStub{scores: map[string]int{
		"staff-free":  50,
		"staff-admin": 0,
		"staff-plain": 0,
	}}, false, zap.NewNop())

	created, err := f.service().AssignAutomatically(context.Background(), "term-1", "duty-1")
	require.NoError(t, err)
	require.Len(t, created, 2)
	// Freed by outing wins even with a heavy workload; the admin role fills
	// the second playground seat.
	assert.Equal(t, "staff-free", created[0].StaffID)
	assert.Equal(t, TierFreedByOuting, created[0].PriorityTier)
	assert.Equal(t, "staff-admin", created[1].StaffID)
	assert.Equal(t, TierAdministrativeRole, created[1].PriorityTier)
}
