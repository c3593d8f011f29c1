package service

import (
	"context"
	"fmt"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// staleAfter is how long an open job may go without an update before the
// worker dashboards count it as overdue
const staleAfter = 3 * 24 * time.Hour

// DashboardService builds the production, employee and admin dashboards
type DashboardService struct {
	projectRepo *repository.ProjectRepository
	jobRepo     *repository.JobRepository
	assignRepo  *repository.AssignJobRepository
	invoiceRepo *repository.InvoiceRepository
	poRepo      *repository.PurchaseOrderRepository
	timeLogRepo *repository.TimeLogRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	jobRepo *repository.JobRepository,
	assignRepo *repository.AssignJobRepository,
	invoiceRepo *repository.InvoiceRepository,
	poRepo *repository.PurchaseOrderRepository,
	timeLogRepo *repository.TimeLogRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
		assignRepo:  assignRepo,
		invoiceRepo: invoiceRepo,
		poRepo:      poRepo,
		timeLogRepo: timeLogRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// weekStart returns Monday 00:00 of t's ISO week
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Production returns the dashboard of a production user. Workload counts the
// open jobs only.
func (s *DashboardService) Production(ctx context.Context, productionID int64) (*domain.WorkerDashboard, error) {
	return s.worker(ctx, repository.AssignJobFilters{ProductionID: &productionID}, true)
}

// Employee returns the dashboard of an employee. Workload counts every job
// ever handed to them.
func (s *DashboardService) Employee(ctx context.Context, employeeID int64) (*domain.WorkerDashboard, error) {
	return s.worker(ctx, repository.AssignJobFilters{EmployeeID: &employeeID}, false)
}

func (s *DashboardService) worker(ctx context.Context, f repository.AssignJobFilters, openWorkload bool) (*domain.WorkerDashboard, error) {
	assignments, err := s.assignRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	var ids []int64
	for _, a := range assignments {
		ids = append(ids, a.JobIDs...)
	}
	jobIDs := []int64(domain.NewJobIDs(ids...))

	now := s.now()
	week := weekStart(now)
	open := []domain.JobStatus{domain.JobActive, domain.JobInProgress}

	var d domain.WorkerDashboard
	counters := []struct {
		dst    *int64
		filter repository.JobCountFilter
	}{
		{&d.TopCards.InProgress, repository.JobCountFilter{IDs: jobIDs, Statuses: []domain.JobStatus{domain.JobInProgress}}},
		{&d.TopCards.Active, repository.JobCountFilter{IDs: jobIDs, Statuses: []domain.JobStatus{domain.JobActive}}},
		{&d.TopCards.Completed, repository.JobCountFilter{IDs: jobIDs, Statuses: []domain.JobStatus{domain.JobComplete}}},
		{&d.TopCards.PendingAssignment, repository.JobCountFilter{Unassigned: true, Statuses: []domain.JobStatus{domain.JobActive}}},
		{&d.WeeklyPerformance.JobsCompleted, repository.JobCountFilter{IDs: jobIDs, Statuses: []domain.JobStatus{domain.JobComplete}, UpdatedFrom: week}},
		{&d.WeeklyPerformance.JobsCreated, repository.JobCountFilter{IDs: jobIDs, CreatedFrom: week}},
		{&d.WeeklyPerformance.OverdueJobs, repository.JobCountFilter{IDs: jobIDs, Statuses: open, UpdatedBefore: now.Add(-staleAfter)}},
	}
	workload := repository.JobCountFilter{IDs: jobIDs}
	if openWorkload {
		workload.Statuses = open
	}
	counters = append(counters, struct {
		dst    *int64
		filter repository.JobCountFilter
	}{&d.EmployeeWorkload.TotalJobsAssigned, workload})

	for _, c := range counters {
		n, err := s.jobRepo.Count(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs: %w", err)
		}
		*c.dst = n
	}
	return &d, nil
}

// AdminReport returns the admin reports page. The independent aggregates run
// concurrently and the first failure cancels the rest.
func (s *DashboardService) AdminReport(ctx context.Context) (*domain.AdminReport, error) {
	now := s.now()
	week := weekStart(now)
	month := monthStart(now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	open := []domain.JobStatus{domain.JobActive, domain.JobInProgress}

	var r domain.AdminReport
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, f repository.JobCountFilter) {
		g.Go(func() error {
			n, err := s.jobRepo.Count(gctx, f)
			*dst = n
			return err
		})
	}
	count(&r.TopCards.TotalJobs, repository.JobCountFilter{})
	count(&r.TopCards.ActiveJobs, repository.JobCountFilter{Statuses: open})
	count(&r.TopCards.CompletedJobs, repository.JobCountFilter{Statuses: []domain.JobStatus{domain.JobComplete}})
	count(&r.JobAnalytics.CreatedThisWeek, repository.JobCountFilter{CreatedFrom: week})
	count(&r.JobAnalytics.CompletedThisWeek, repository.JobCountFilter{Statuses: []domain.JobStatus{domain.JobComplete}, UpdatedFrom: week})
	count(&r.JobAnalytics.DueThisWeek, repository.JobCountFilter{Statuses: open, CreatedFrom: week})
	count(&r.JobAnalytics.OverdueJobs, repository.JobCountFilter{Statuses: open, CreatedBefore: today})

	g.Go(func() error {
		n, err := s.projectRepo.Count(gctx)
		r.TopCards.TotalProjects = n
		return err
	})
	g.Go(func() (err error) {
		r.TopCards.InvoiceAmountByCurrency, err = s.invoiceRepo.SumByCurrency(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		r.TopCards.POAmountByCurrency, err = s.poRepo.SumByCurrency(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		r.Finance.InvoiceThisMonthByCurrency, err = s.invoiceRepo.SumByCurrency(gctx, &month)
		return err
	})
	g.Go(func() (err error) {
		r.Finance.POThisMonthByCurrency, err = s.poRepo.SumByCurrency(gctx, &month)
		return err
	})
	g.Go(func() (err error) {
		r.Finance.PaidAmount, err = s.invoiceRepo.SumByPaymentStatus(gctx, "Paid")
		return err
	})
	g.Go(func() (err error) {
		r.Finance.UnpaidAmount, err = s.invoiceRepo.SumByPaymentStatus(gctx, "Unpaid")
		return err
	})
	g.Go(func() error {
		logs, err := s.timeLogRepo.ListSince(gctx, domain.Date{})
		if err != nil {
			return err
		}
		var total, weekly time.Duration
		weekDate := domain.NewDate(week)
		for i := range logs {
			d := domain.ClockSum(logs[i].Time)
			total += d
			if !logs[i].Date.Before(weekDate.Time) {
				weekly += d
			}
		}
		r.Productivity = domain.Productivity{
			TotalHours:  domain.FormatClock(total),
			WeeklyHours: domain.FormatClock(weekly),
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to build admin report", zap.Error(err))
		return nil, fmt.Errorf("failed to load admin dashboard reports: %w", err)
	}

	for _, list := range []*[]domain.CurrencyAmount{
		&r.TopCards.InvoiceAmountByCurrency, &r.TopCards.POAmountByCurrency,
		&r.Finance.InvoiceThisMonthByCurrency, &r.Finance.POThisMonthByCurrency,
	} {
		if *list == nil {
			*list = []domain.CurrencyAmount{}
		}
	}
	return &r, nil
}
