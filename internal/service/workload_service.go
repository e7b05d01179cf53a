package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	appErrors "github.com/escola-admin/escola-api/pkg/errors"
)

type assignmentWindowReader interface {
	ListForStaffInWindow(ctx context.Context, staffID string, from, to time.Time) ([]models.AssignmentWithDuty, error)
}

type workloadStaffLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.StaffMember, error)
}

type balanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// WorkloadConfig names the scoring policy constants. Weights encode that some
// duty categories are more burdensome than others.
type WorkloadConfig struct {
	WindowDays          int
	PerAssignmentWeight int
	CategoryWeights     map[string]int
	CacheTTL            time.Duration
}

// DefaultWorkloadConfig returns the standing policy values.
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		WindowDays:          30,
		PerAssignmentWeight: 10,
		CategoryWeights: map[string]int{
			models.DutyCategoryPlayground: 5,
			models.DutyCategoryLibrary:    3,
		},
		CacheTTL: 5 * time.Minute,
	}
}

// WorkloadService computes recency-windowed workload scores and the
// per-staff balance report. Higher score means heavier recent load and
// therefore lower assignment priority.
type WorkloadService struct {
	assignments assignmentWindowReader
	staff       workloadStaffLister
	cache       balanceCache
	cfg         WorkloadConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewWorkloadService constructs the service.
func NewWorkloadService(assignments assignmentWindowReader, staff workloadStaffLister, cache balanceCache, cfg WorkloadConfig, logger *zap.Logger) *WorkloadService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.PerAssignmentWeight <= 0 {
		cfg.PerAssignmentWeight = 10
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadService{
		assignments: assignments,
		staff:       staff,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Score returns the weighted workload score and the raw assignment count for
// one staff member over the trailing window.
func (s *WorkloadService) Score(ctx context.Context, staffID string) (int, int, error) {
	to := s.now()
	from := to.AddDate(0, 0, -s.cfg.WindowDays)

	rows, err := s.assignments.ListForStaffInWindow(ctx, staffID, from, to)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load assignment history")
	}

	score := s.cfg.PerAssignmentWeight * len(rows)
	for _, row := range rows {
		score += s.cfg.CategoryWeights[strings.ToLower(row.DutyCategory)]
	}
	return score, len(rows), nil
}

// Balance returns the workload report for every staff member of the term,
// sorted descending by score. Results are cached briefly since the report
// backs an administrative dashboard.
func (s *WorkloadService) Balance(ctx context.Context, termID string) ([]models.WorkloadRow, error) {
	cacheKey := fmt.Sprintf("workload:balance:%s", termID)
	if s.cache != nil {
		var cached []models.WorkloadRow
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("workload balance cache read failed", zap.Error(err))
		}
	}

	members, err := s.staff.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list staff")
	}

	rows := make([]models.WorkloadRow, 0, len(members))
	for _, member := range members {
		score, total, err := s.Score(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.WorkloadRow{
			StaffID:          member.ID,
			FullName:         member.FullName,
			TotalAssignments: total,
			WorkloadScore:    score,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WorkloadScore == rows[j].WorkloadScore {
			return rows[i].FullName < rows[j].FullName
		}
		return rows[i].WorkloadScore > rows[j].WorkloadScore
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rows, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("workload balance cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}
