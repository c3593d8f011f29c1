package jobs

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/events"
	"github.com/packline/jobdesk-api/internal/metrics"
	"go.uber.org/zap"
)

// StaleAssignmentsJobName is the scheduler name of the stale report job
const StaleAssignmentsJobName = "stale-assignments"

// StaleAssignmentFinder lists in-progress assignments not updated since cutoff
type StaleAssignmentFinder interface {
	Stale(ctx context.Context, cutoff time.Time) ([]domain.AssignJob, error)
}

// StaleAssignmentsJob reports assignments that have sat in progress for
// longer than maxAge, one event per assignment
type StaleAssignmentsJob struct {
	finder    StaleAssignmentFinder
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	maxAge    time.Duration
	timeout   time.Duration
	now       func() time.Time
}

func NewStaleAssignmentsJob(finder StaleAssignmentFinder, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger, maxAge, timeout time.Duration) *StaleAssignmentsJob {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &StaleAssignmentsJob{
		finder:    finder,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With(zap.String("job", StaleAssignmentsJobName)),
		maxAge:    maxAge,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Run executes one pass and returns the number of stale assignments found
func (j *StaleAssignmentsJob) Run() int {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	rows, err := j.finder.Stale(ctx, j.now().Add(-j.maxAge))
	j.metrics.JobRun(StaleAssignmentsJobName, err)
	if err != nil {
		j.logger.Error("stale assignment check failed", zap.Error(err))
		return 0
	}

	for _, a := range rows {
		j.logger.Warn("assignment has not moved",
			zap.Int64("assign_job_id", a.ID),
			zap.Int64("project_id", a.ProjectID),
			zap.String("production_status", string(a.ProductionStatus)),
			zap.String("employee_status", string(a.EmployeeStatus)),
			zap.Time("updated_at", a.UpdatedAt))
		events.Emit(ctx, j.publisher, j.logger, events.TypeStaleAssignment, events.StaleAssignmentEvent{
			AssignJobID:  a.ID,
			ProjectID:    a.ProjectID,
			ProductionID: a.ProductionID,
			EmployeeID:   a.EmployeeID,
			UpdatedAt:    a.UpdatedAt,
		})
	}

	j.logger.Info("stale assignment check completed",
		zap.Int("stale", len(rows)),
		zap.Duration("max_age", j.maxAge))
	return len(rows)
}

// RegisterStaleAssignmentsJob adds the stale report job to the scheduler
func RegisterStaleAssignmentsJob(s *Scheduler, finder StaleAssignmentFinder, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger, cronExpr string, maxAge, timeout time.Duration) error {
	job := NewStaleAssignmentsJob(finder, publisher, m, logger, maxAge, timeout)
	return s.AddJob(StaleAssignmentsJobName, cronExpr, func() { job.Run() })
}
