package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/escola-admin/escola-api/internal/models"
	"github.com/escola-admin/escola-api/internal/repository"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
	"github.com/escola-admin/escola-api/pkg/jobs"
)

type dutySlotStore interface {
	FindByID(ctx context.Context, id string) (*models.DutySlot, error)
	UpdateStatus(ctx context.Context, id string, status models.DutyStatus) error
}

type staffLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.StaffMember, error)
}

type outingLister interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Outing, error)
}

type assignmentStore interface {
	ListByDuty(ctx context.Context, dutyID string) ([]models.DutyAssignment, error)
	Create(ctx context.Context, assignment *models.DutyAssignment) error
}

type timetableLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntry, error)
}

type candidateClassifier interface {
	Classify(ctx context.Context, member models.StaffMember, actx models.AssignmentContext) (*models.Candidate, error)
}

// notificationSink delivers best-effort messages. Failures are logged and
// retried by the dispatcher, never surfaced to the assignment caller.
type notificationSink interface {
	Notify(ctx context.Context, staffID, message string) error
	NotifyCoordinator(ctx context.Context, message string) error
}

// assignmentRecorder receives one audit record per auto-created assignment.
type assignmentRecorder interface {
	RecordAutoAssignment(dutyID, staffID, category string, tier int)
}

type taskQueue interface {
	Enqueue(task jobs.Task) error
}

// StaffingPolicy maps a duty category to the number of staff required to
// cover one slot. Unknown categories fall back to the default.
type StaffingPolicy struct {
	Default    int
	Categories map[string]int
}

// DefaultStaffingPolicy returns the standing policy: playground duties need
// two people, everything else one.
func DefaultStaffingPolicy() StaffingPolicy {
	return StaffingPolicy{
		Default:    1,
		Categories: map[string]int{models.DutyCategoryPlayground: 2},
	}
}

// RequiredStaff returns the cardinality for a duty category.
func (p StaffingPolicy) RequiredStaff(category string) int {
	if count, ok := p.Categories[strings.ToLower(category)]; ok {
		return count
	}
	if p.Default > 0 {
		return p.Default
	}
	return 1
}

// DutyAssignmentService selects and commits the best-fitting staff members
// for an open duty slot.
type DutyAssignmentService struct {
	duties      dutySlotStore
	staff       staffLister
	outings     outingLister
	assignments assignmentStore
	timetable   timetableLister
	classifier  candidateClassifier
	notifier    notificationSink
	recorder    assignmentRecorder
	dispatcher  taskQueue
	staffing    StaffingPolicy
	logger      *zap.Logger
}

// NewDutyAssignmentService wires the assignment engine.
func NewDutyAssignmentService(
	duties dutySlotStore,
	staff staffLister,
	outings outingLister,
	assignments assignmentStore,
	timetable timetableLister,
	classifier candidateClassifier,
	notifier notificationSink,
	recorder assignmentRecorder,
	dispatcher taskQueue,
	staffing StaffingPolicy,
	logger *zap.Logger,
) *DutyAssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staffing.Default <= 0 && len(staffing.Categories) == 0 {
		staffing = DefaultStaffingPolicy()
	}
	return &DutyAssignmentService{
		duties:      duties,
		staff:       staff,
		outings:     outings,
		assignments: assignments,
		timetable:   timetable,
		classifier:  classifier,
		notifier:    notifier,
		recorder:    recorder,
		dispatcher:  dispatcher,
		staffing:    staffing,
		logger:      logger,
	}
}

// AssignAutomatically covers an open duty slot with the best-fitting staff.
// It returns the assignment rows created by this invocation; an empty list
// is a legitimate answer meaning no eligible staff were found.
func (s *DutyAssignmentService) AssignAutomatically(ctx context.Context, termID, dutyID string) ([]models.DutyAssignment, error) {
	actx, err := s.buildContext(ctx, termID, dutyID)
	if err != nil {
		return nil, err
	}

	required := s.staffing.RequiredStaff(actx.Duty.Category)
	if required <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("duty category %q requires no staff", actx.Duty.Category))
	}
	occupied := occupiedSeats(actx.Existing)
	remaining := required - occupied
	if remaining <= 0 {
		s.logger.Info("duty already fully covered",
			zap.String("duty_id", dutyID), zap.Int("required", required), zap.Int("occupied", occupied))
		return []models.DutyAssignment{}, nil
	}

	candidates, err := s.classifyAll(ctx, actx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Tier != candidates[j].Tier {
			return candidates[i].Tier < candidates[j].Tier
		}
		if candidates[i].WorkloadScore != candidates[j].WorkloadScore {
			return candidates[i].WorkloadScore < candidates[j].WorkloadScore
		}
		return candidates[i].StaffID < candidates[j].StaffID
	})

	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}

	created := s.persistAssignments(ctx, actx.Duty, candidates)
	if len(created) == 0 {
		s.logger.Info("no coverage found for duty", zap.String("duty_id", dutyID))
		return []models.DutyAssignment{}, nil
	}

	if err := s.duties.UpdateStatus(ctx, actx.Duty.ID, models.DutyStatusAssigned); err != nil {
		// Rows are durable; the caller may retry the transition, duplicates
		// are skipped on re-run.
		return created, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to transition duty status")
	}

	s.enqueuePostCommit(actx, created)
	return created, nil
}

// buildContext gathers the immutable snapshot the classifier works against.
// Reads run in parallel; any failure aborts with no partial context.
func (s *DutyAssignmentService) buildContext(ctx context.Context, termID, dutyID string) (*models.AssignmentContext, error) {
	duty, err := s.duties.FindByID(ctx, dutyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "duty slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load duty slot")
	}

	actx := &models.AssignmentContext{Duty: *duty}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		staff, err := s.staff.ListByTerm(gctx, termID)
		if err != nil {
			return fmt.Errorf("load staff: %w", err)
		}
		actx.Staff = staff
		return nil
	})
	g.Go(func() error {
		outings, err := s.outings.ListOverlapping(gctx, duty.Date, duty.Date)
		if err != nil {
			return fmt.Errorf("load outings: %w", err)
		}
		actx.Outings = outings
		return nil
	})
	g.Go(func() error {
		existing, err := s.assignments.ListByDuty(gctx, dutyID)
		if err != nil {
			return fmt.Errorf("load existing assignments: %w", err)
		}
		actx.Existing = existing
		return nil
	})
	g.Go(func() error {
		timetable, err := s.timetable.ListByTerm(gctx, termID)
		if err != nil {
			return fmt.Errorf("load timetable: %w", err)
		}
		actx.Timetable = timetable
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to build assignment context")
	}
	return actx, nil
}

// occupiedSeats counts assignment rows that still hold a seat. A rejected
// row frees its seat for a re-run; the rejecter stays excluded from the
// candidate pool because the row itself remains on the duty.
func occupiedSeats(existing []models.DutyAssignment) int {
	count := 0
	for _, a := range existing {
		if a.Status != models.AssignmentStatusRejected {
			count++
		}
	}
	return count
}

func (s *DutyAssignmentService) classifyAll(ctx context.Context, actx *models.AssignmentContext) ([]models.Candidate, error) {
	candidates := make([]models.Candidate, 0, len(actx.Staff))
	for _, member := range actx.Staff {
		candidate, err := s.classifier.Classify(ctx, member, *actx)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			continue
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, nil
}

// persistAssignments writes one row per selected candidate, serially.
// Duplicate pairings are skipped; a hard write failure stops the phase but
// keeps rows already created, so the status transition downstream is keyed
// off what actually exists.
func (s *DutyAssignmentService) persistAssignments(ctx context.Context, duty models.DutySlot, candidates []models.Candidate) []models.DutyAssignment {
	created := make([]models.DutyAssignment, 0, len(candidates))
	for _, candidate := range candidates {
		row := models.DutyAssignment{
			DutyID:       duty.ID,
			StaffID:      candidate.StaffID,
			PriorityTier: candidate.Tier,
			Status:       models.AssignmentStatusAssigned,
			Reason:       candidate.Reason,
			AutoAssigned: true,
		}
		if err := s.assignments.Create(ctx, &row); err != nil {
			if errors.Is(err, repository.ErrDuplicateAssignment) {
				s.logger.Info("assignment pairing already exists, skipping",
					zap.String("duty_id", duty.ID), zap.String("staff_id", candidate.StaffID))
				continue
			}
			s.logger.Error("failed to persist assignment",
				zap.String("duty_id", duty.ID), zap.String("staff_id", candidate.StaffID), zap.Error(err))
			break
		}
		created = append(created, row)
	}
	return created
}

// enqueuePostCommit schedules the best-effort tail: one notification per
// assignee, a coordinator summary, and one audit record per row. Enqueue
// failures are logged; they never affect the committed assignments.
func (s *DutyAssignmentService) enqueuePostCommit(actx *models.AssignmentContext, created []models.DutyAssignment) {
	if s.dispatcher == nil {
		return
	}
	duty := actx.Duty
	names := make(map[string]string, len(actx.Staff))
	for _, member := range actx.Staff {
		names[member.ID] = member.FullName
	}

	date := duty.Date.Format("2006-01-02")
	assignees := make([]string, 0, len(created))
	for _, row := range created {
		row := row
		assignees = append(assignees, names[row.StaffID])

		if s.notifier != nil {
			message := fmt.Sprintf("You have been assigned to the %s duty on %s from %s to %s.",
				duty.Category, date, duty.StartTime, duty.EndTime)
			s.enqueue(jobs.Task{
				ID:   uuid.NewString(),
				Kind: "notify_assignee",
				Run: func(taskCtx context.Context) error {
					return s.notifier.Notify(taskCtx, row.StaffID, message)
				},
			})
		}
		if s.recorder != nil {
			s.enqueue(jobs.Task{
				ID:   uuid.NewString(),
				Kind: "record_assignment",
				Run: func(taskCtx context.Context) error {
					s.recorder.RecordAutoAssignment(row.DutyID, row.StaffID, duty.Category, row.PriorityTier)
					return nil
				},
			})
		}
	}

	if s.notifier != nil {
		summary := fmt.Sprintf("Duty %s (%s, %s %s-%s) covered by: %s.",
			duty.ID, duty.Category, date, duty.StartTime, duty.EndTime, strings.Join(assignees, ", "))
		s.enqueue(jobs.Task{
			ID:   uuid.NewString(),
			Kind: "notify_coordinator",
			Run: func(taskCtx context.Context) error {
				return s.notifier.NotifyCoordinator(taskCtx, summary)
			},
		})
	}
}

func (s *DutyAssignmentService) enqueue(task jobs.Task) {
	if err := s.dispatcher.Enqueue(task); err != nil {
		s.logger.Warn("failed to enqueue post-commit task", zap.String("kind", task.Kind), zap.Error(err))
	}
}
