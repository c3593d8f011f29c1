package jobs

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/metrics"
	"go.uber.org/zap"
)

// AuditRetentionJobName is the scheduler name of the audit purge job
const AuditRetentionJobName = "audit-retention"

// AuditPurger deletes audit entries older than a retention window
type AuditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditRetentionJob keeps the audit trail bounded
type AuditRetentionJob struct {
	purger    AuditPurger
	metrics   *metrics.Metrics
	logger    *zap.Logger
	retention time.Duration
	timeout   time.Duration
}

func NewAuditRetentionJob(purger AuditPurger, m *metrics.Metrics, logger *zap.Logger, retention, timeout time.Duration) *AuditRetentionJob {
	return &AuditRetentionJob{
		purger:    purger,
		metrics:   m,
		logger:    logger.With(zap.String("job", AuditRetentionJobName)),
		retention: retention,
		timeout:   timeout,
	}
}

// Run executes one purge and returns the number of deleted entries
func (j *AuditRetentionJob) Run() int64 {
	if j.retention <= 0 {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.purger.Purge(ctx, j.retention)
	j.metrics.JobRun(AuditRetentionJobName, err)
	if err != nil {
		j.logger.Error("audit retention failed", zap.Error(err))
		return 0
	}
	j.logger.Info("audit retention completed", zap.Int64("deleted", n))
	return n
}

// RegisterAuditRetentionJob adds the purge job to the scheduler
func RegisterAuditRetentionJob(s *Scheduler, purger AuditPurger, m *metrics.Metrics, logger *zap.Logger, cronExpr string, retention, timeout time.Duration) error {
	job := NewAuditRetentionJob(purger, m, logger, retention, timeout)
	return s.AddJob(AuditRetentionJobName, cronExpr, func() { job.Run() })
}
