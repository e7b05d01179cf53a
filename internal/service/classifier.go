package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
)

// Priority tiers, lower wins. The fallback pool starts at TierAvailableBase
// and grows with the candidate's workload score, so lightly loaded staff sort
// ahead of heavily loaded ones.
const (
	TierFreedByOuting      = 1
	TierOnDutyTimetable    = 10
	TierAdministrativeRole = 20
	TierAvailableBase      = 30
)

type workloadScorer interface {
	Score(ctx context.Context, staffID string) (int, int, error)
}

// PriorityClassifier evaluates the tiered eligibility rules for one staff
// member against an assignment context.
type PriorityClassifier struct {
	workload       workloadScorer
	degradeOnError bool
	logger         *zap.Logger
}

// NewPriorityClassifier constructs the classifier. With degradeOnError set,
// a failed workload lookup scores the candidate as zero instead of failing
// the classification.
func NewPriorityClassifier(workload workloadScorer, degradeOnError bool, logger *zap.Logger) *PriorityClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriorityClassifier{workload: workload, degradeOnError: degradeOnError, logger: logger}
}

// Classify returns the candidate verdict for the member, or nil when the
// member already holds an assignment for the context's duty. Tiers are
// evaluated in order and the first match wins; the workload score is always
// computed because it breaks ties within every tier.
func (c *PriorityClassifier) Classify(ctx context.Context, member models.StaffMember, actx models.AssignmentContext) (*models.Candidate, error) {
	if actx.AlreadyAssigned(member.ID) {
		return nil, nil
	}

	score, _, err := c.workload.Score(ctx, member.ID)
	if err != nil {
		if !c.degradeOnError {
			return nil, err
		}
		c.logger.Warn("workload score unavailable, treating as zero",
			zap.String("staff_id", member.ID), zap.Error(err))
		score = 0
	}

	if outing := c.freedByOuting(member, actx); outing != nil {
		return &models.Candidate{
			StaffID:       member.ID,
			Tier:          TierFreedByOuting,
			Reason:        fmt.Sprintf("freed by outing: %s", outing.Name),
			WorkloadScore: score,
		}, nil
	}

	if c.hasOnDutySlot(member, actx) {
		return &models.Candidate{
			StaffID:       member.ID,
			Tier:          TierOnDutyTimetable,
			Reason:        "duty assigned in timetable",
			WorkloadScore: score,
		}, nil
	}

	if member.HasAdministrativeRole() {
		return &models.Candidate{
			StaffID:       member.ID,
			Tier:          TierAdministrativeRole,
			Reason:        fmt.Sprintf("administrative role: %s", *member.Role),
			WorkloadScore: score,
		}, nil
	}

	return &models.Candidate{
		StaffID:       member.ID,
		Tier:          TierAvailableBase + score/10,
		Reason:        "available",
		WorkloadScore: score,
	}, nil
}

// freedByOuting returns the outing that releases the member from a regular
// timetable slot overlapping the duty window, if any. The member qualifies
// when an outing covering the duty's date takes away a class group the
// member would otherwise be teaching at that time.
func (c *PriorityClassifier) freedByOuting(member models.StaffMember, actx models.AssignmentContext) *models.Outing {
	duty := actx.Duty
	for i := range actx.Outings {
		outing := &actx.Outings[i]
		if duty.Date.Before(outing.StartDate) || duty.Date.After(outing.EndDate) {
			continue
		}
		for _, entry := range actx.Timetable {
			if entry.StaffID != member.ID || entry.ClassGroupID == nil || *entry.ClassGroupID != outing.ClassGroupID {
				continue
			}
			if !MatchesWeekday(duty.Date, entry.Weekday) {
				continue
			}
			if Overlaps(entry.StartTime, entry.EndTime, duty.StartTime, duty.EndTime) {
				return outing
			}
		}
	}
	return nil
}

// hasOnDutySlot reports whether the member's timetable reserves an on-duty
// slot overlapping the duty window.
func (c *PriorityClassifier) hasOnDutySlot(member models.StaffMember, actx models.AssignmentContext) bool {
	duty := actx.Duty
	for _, entry := range actx.Timetable {
		if entry.StaffID != member.ID || !entry.IsOnDuty() {
			continue
		}
		if !MatchesWeekday(duty.Date, entry.Weekday) {
			continue
		}
		if Overlaps(entry.StartTime, entry.EndTime, duty.StartTime, duty.EndTime) {
			return true
		}
	}
	return false
}
