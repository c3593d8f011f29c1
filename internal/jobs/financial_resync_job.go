package jobs

import (
	"context"
	"time"

	"github.com/packline/jobdesk-api/internal/metrics"
	"go.uber.org/zap"
)

// FinancialResyncJobName is the scheduler name of the re-sync job
const FinancialResyncJobName = "financial-resync"

// FinancialResyncer re-applies every estimate's totals to the purchase
// orders and invoices linked to it
type FinancialResyncer interface {
	ResyncAll(ctx context.Context) (synced, failed int, err error)
}

// FinancialResyncJob repairs amounts left stale by a failed best-effort sync
type FinancialResyncJob struct {
	syncer  FinancialResyncer
	metrics *metrics.Metrics
	logger  *zap.Logger
	timeout time.Duration
}

func NewFinancialResyncJob(syncer FinancialResyncer, m *metrics.Metrics, logger *zap.Logger, timeout time.Duration) *FinancialResyncJob {
	return &FinancialResyncJob{
		syncer:  syncer,
		metrics: m,
		logger:  logger.With(zap.String("job", FinancialResyncJobName)),
		timeout: timeout,
	}
}

// Run executes one pass. It is called by the scheduler.
func (j *FinancialResyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	synced, failed, err := j.syncer.ResyncAll(ctx)
	j.metrics.JobRun(FinancialResyncJobName, err)
	if err != nil {
		j.logger.Error("financial re-sync failed",
			zap.Int("synced", synced),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	}
	if failed > 0 {
		j.logger.Warn("financial re-sync completed with failures", fields...)
		return
	}
	j.logger.Info("financial re-sync completed", fields...)
}

// RegisterFinancialResyncJob adds the re-sync job to the scheduler
func RegisterFinancialResyncJob(s *Scheduler, syncer FinancialResyncer, m *metrics.Metrics, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewFinancialResyncJob(syncer, m, logger, timeout)
	return s.AddJob(FinancialResyncJobName, cronExpr, job.Run)
}
