package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/events"
	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrJobNotInAssignment is returned when a job id is not part of the
// assignment named in the same request
var ErrJobNotInAssignment = domain.Validation("Job is not part of this assignment")

// AssignmentService runs the job assignment workflow. Every transition is
// computed by a pure function in the domain package and written in one
// transaction together with its effect on the jobs.
type AssignmentService struct {
	assignRepo  *repository.AssignJobRepository
	jobRepo     *repository.JobRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	db          *gorm.DB
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignRepo *repository.AssignJobRepository,
	jobRepo *repository.JobRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
	db *gorm.DB,
) *AssignmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AssignmentService{
		assignRepo:  assignRepo,
		jobRepo:     jobRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
		db:          db,
	}
}

// Assign creates an assignment, or re-issues the identical one in place
func (s *AssignmentService) Assign(ctx context.Context, req *domain.AssignJobRequest) (*domain.AssignJob, error) {
	if req.ProjectID == nil || len(req.JobIDs) == 0 {
		return nil, ErrRequiredFieldsMissing
	}
	tr, err := domain.AssignTransition(req.EmployeeID, req.ProductionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	candidate := &domain.AssignJob{
		ProjectID:       *req.ProjectID,
		JobIDs:          domain.NewJobIDs(req.JobIDs...),
		EmployeeID:      req.EmployeeID,
		ProductionID:    req.ProductionID,
		TaskDescription: req.TaskDescription,
		TimeBudget:      req.TimeBudget,
	}
	candidate.Apply(tr.State)

	var saved *domain.AssignJob
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignRepo := s.assignRepo.WithTx(tx)

		existing, err := assignRepo.FindExact(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to look up assignment: %w", err)
		}
		if existing != nil {
			existing.TaskDescription = candidate.TaskDescription
			existing.TimeBudget = candidate.TimeBudget
			existing.Apply(tr.State)
			if err := assignRepo.Save(ctx, existing); err != nil {
				return fmt.Errorf("failed to update assignment: %w", err)
			}
			saved = existing
		} else {
			if err := assignRepo.Create(ctx, candidate); err != nil {
				return fmt.Errorf("failed to create assignment: %w", err)
			}
			saved = candidate
		}

		if _, err := s.jobRepo.WithTx(tx).ApplyEffect(ctx, saved.JobIDs, tr.Job); err != nil {
			return fmt.Errorf("failed to update jobs: %w", err)
		}
		return nil
	})
	s.record(ctx, tr.Name, []int64{idOf(saved)}, candidate.JobIDs, req.EmployeeID, req.ProductionID, err)
	if err != nil {
		s.logger.Error("failed to assign jobs",
			zap.Int64("project_id", *req.ProjectID),
			zap.String("job_ids", candidate.JobIDs.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("jobs assigned",
		zap.Int64("assign_job_id", saved.ID),
		zap.String("job_ids", saved.JobIDs.String()),
		zap.String("assigned", tr.Job.Assigned))
	return saved, nil
}

// ProductionAssign delegates production assignments to an employee
func (s *AssignmentService) ProductionAssign(ctx context.Context, req *domain.ProductionAssignRequest) (int, error) {
	ids := domain.NewJobIDs(req.AssignJobIDs...)
	if len(ids) == 0 || req.EmployeeID == nil {
		return 0, ErrRequiredFieldsMissing
	}

	var jobIDs domain.JobIDs
	var updated int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignRepo := s.assignRepo.WithTx(tx)
		rows, err := assignRepo.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		if len(rows) == 0 {
			return ErrAssignJobNotFound
		}

		var effect domain.JobEffect
		for i := range rows {
			tr := domain.ProductionDelegateTransition(rows[i].Statuses(), *req.EmployeeID)
			rows[i].EmployeeID = req.EmployeeID
			rows[i].Apply(tr.State)
			if err := assignRepo.Save(ctx, &rows[i]); err != nil {
				return fmt.Errorf("failed to update assignment %d: %w", rows[i].ID, err)
			}
			jobIDs = append(jobIDs, rows[i].JobIDs...)
			effect = tr.Job
		}
		jobIDs = domain.NewJobIDs(jobIDs...)
		if _, err := s.jobRepo.WithTx(tx).ApplyEffect(ctx, jobIDs, effect); err != nil {
			return fmt.Errorf("failed to update jobs: %w", err)
		}
		updated = len(rows)
		return nil
	})
	s.record(ctx, domain.TransitionProductionDelegate, ids, jobIDs, req.EmployeeID, nil, err)
	if err != nil {
		s.logger.Error("failed to delegate assignments", zap.Int64s("assign_job_ids", ids), zap.Error(err))
		return 0, err
	}
	return updated, nil
}

// EmployeeComplete marks the employee's part of one job done
func (s *AssignmentService) EmployeeComplete(ctx context.Context, assignJobID, jobID int64) error {
	return s.employeeTransition(ctx, assignJobID, jobID, domain.EmployeeCompleteTransition)
}

// EmployeeReject hands one job back
func (s *AssignmentService) EmployeeReject(ctx context.Context, assignJobID, jobID int64) error {
	return s.employeeTransition(ctx, assignJobID, jobID, domain.EmployeeRejectTransition)
}

func (s *AssignmentService) employeeTransition(ctx context.Context, assignJobID, jobID int64, transition func(domain.AssignmentState) domain.Transition) error {
	var name string
	var row *domain.AssignJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignRepo := s.assignRepo.WithTx(tx)
		var err error
		row, err = assignRepo.GetByID(ctx, assignJobID)
		if err != nil {
			return notFound(err, ErrAssignJobNotFound)
		}
		if !row.JobIDs.Contains(jobID) {
			return ErrJobNotInAssignment
		}

		tr := transition(row.Statuses())
		name = tr.Name
		if err := assignRepo.UpdateState(ctx, []int64{row.ID}, tr.State); err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		n, err := s.jobRepo.WithTx(tx).ApplyEffect(ctx, []int64{jobID}, tr.Job)
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		if n == 0 {
			return ErrJobNotFound
		}
		return nil
	})
	if name == "" {
		name = transition(domain.AssignmentState{}).Name
	}
	var employeeID *int64
	if row != nil {
		employeeID = row.EmployeeID
	}
	s.record(ctx, name, []int64{assignJobID}, []int64{jobID}, employeeID, nil, err)
	if err != nil {
		s.logger.Error("employee transition failed",
			zap.String("transition", name),
			zap.Int64("assign_job_id", assignJobID),
			zap.Int64("job_id", jobID),
			zap.Error(err))
	}
	return err
}

// ProductionComplete closes an assignment and every job in it
func (s *AssignmentService) ProductionComplete(ctx context.Context, id int64) (*domain.AssignJob, error) {
	var row *domain.AssignJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignRepo := s.assignRepo.WithTx(tx)
		var err error
		row, err = assignRepo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAssignJobNotFound)
		}
		if len(row.JobIDs) == 0 {
			return ErrNoJobsToUpdate
		}

		tr := domain.ProductionCompleteTransition(row.Statuses())
		row.Apply(tr.State)
		if err := assignRepo.UpdateState(ctx, []int64{row.ID}, tr.State); err != nil {
			return fmt.Errorf("failed to update assignment: %w", err)
		}
		if _, err := s.jobRepo.WithTx(tx).ApplyEffect(ctx, row.JobIDs, tr.Job); err != nil {
			return fmt.Errorf("failed to update jobs: %w", err)
		}
		return nil
	})

	var jobIDs domain.JobIDs
	var productionID *int64
	if row != nil {
		jobIDs, productionID = row.JobIDs, row.ProductionID
	}
	s.record(ctx, domain.TransitionProductionComplete, []int64{id}, jobIDs, nil, productionID, err)
	if err != nil {
		s.logger.Error("failed to complete assignment", zap.Int64("assign_job_id", id), zap.Error(err))
		return nil, err
	}
	return row, nil
}

// ProductionReturn returns a batch of assignments to admin. With
// markJobsReturned the jobs get the return status instead of complete.
func (s *AssignmentService) ProductionReturn(ctx context.Context, ids []int64, markJobsReturned bool) (*domain.BatchResult, error) {
	return s.productionBatch(ctx, ids, func(st domain.AssignmentState) domain.Transition {
		return domain.ProductionReturnTransition(st, markJobsReturned)
	})
}

// ProductionReject rejects a batch of assignments and their jobs
func (s *AssignmentService) ProductionReject(ctx context.Context, ids []int64) (*domain.BatchResult, error) {
	return s.productionBatch(ctx, ids, domain.ProductionRejectTransition)
}

func (s *AssignmentService) productionBatch(ctx context.Context, ids []int64, transition func(domain.AssignmentState) domain.Transition) (*domain.BatchResult, error) {
	ids = domain.NewJobIDs(ids...)
	name := transition(domain.AssignmentState{}).Name
	if len(ids) == 0 {
		return nil, ErrNoAssignJobIDs
	}

	var jobIDs domain.JobIDs
	var updated []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignRepo := s.assignRepo.WithTx(tx)
		rows, err := assignRepo.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		if len(rows) == 0 {
			return ErrAssignJobNotFound
		}

		var effect domain.JobEffect
		for _, row := range rows {
			tr := transition(row.Statuses())
			if err := assignRepo.UpdateState(ctx, []int64{row.ID}, tr.State); err != nil {
				return fmt.Errorf("failed to update assignment %d: %w", row.ID, err)
			}
			jobIDs = append(jobIDs, row.JobIDs...)
			updated = append(updated, row.ID)
			effect = tr.Job
		}
		jobIDs = domain.NewJobIDs(jobIDs...)
		if _, err := s.jobRepo.WithTx(tx).ApplyEffect(ctx, jobIDs, effect); err != nil {
			return fmt.Errorf("failed to update jobs: %w", err)
		}
		return nil
	})
	s.record(ctx, name, ids, jobIDs, nil, nil, err)
	if err != nil {
		s.logger.Error("production batch transition failed",
			zap.String("transition", name),
			zap.Int64s("assign_job_ids", ids),
			zap.Error(err))
		return nil, err
	}
	return &domain.BatchResult{AssignJobIDs: updated, AffectedJobIDs: []int64(jobIDs)}, nil
}

// Delete removes one assignment row; its jobs are left as they are
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	n, err := s.assignRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if n == 0 {
		return ErrAssignJobNotFound
	}
	return nil
}

// GetByID returns one assignment
func (s *AssignmentService) GetByID(ctx context.Context, id int64) (*domain.AssignJob, error) {
	row, err := s.assignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAssignJobNotFound)
	}
	return row, nil
}

// ListByEmployee groups the assignments handed to an employee
func (s *AssignmentService) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.AssignmentGroup, error) {
	return s.groups(ctx, repository.AssignJobFilters{EmployeeID: &employeeID}, true)
}

// ListAllEmployee groups every assignment that has an employee
func (s *AssignmentService) ListAllEmployee(ctx context.Context) ([]domain.AssignmentGroup, error) {
	has := true
	return s.groups(ctx, repository.AssignJobFilters{HasEmployee: &has}, true)
}

// ListByProduction groups a production user's assignments not yet delegated
func (s *AssignmentService) ListByProduction(ctx context.Context, productionID int64) ([]domain.AssignmentGroup, error) {
	has := false
	return s.groups(ctx, repository.AssignJobFilters{ProductionID: &productionID, HasEmployee: &has}, false)
}

// ListAllProduction groups every production assignment
func (s *AssignmentService) ListAllProduction(ctx context.Context) ([]domain.AssignmentGroup, error) {
	rows, err := s.assignRepo.List(ctx, repository.AssignJobFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	out := rows[:0]
	for _, row := range rows {
		if row.ProductionID != nil {
			out = append(out, row)
		}
	}
	return s.buildGroups(ctx, out, false)
}

func (s *AssignmentService) groups(ctx context.Context, f repository.AssignJobFilters, byEmployee bool) ([]domain.AssignmentGroup, error) {
	rows, err := s.assignRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return s.buildGroups(ctx, rows, byEmployee)
}

// buildGroups keeps the newest row per (project, job set) and attaches the
// user, project and jobs of each. rows must be ordered newest first.
func (s *AssignmentService) buildGroups(ctx context.Context, rows []domain.AssignJob, byEmployee bool) ([]domain.AssignmentGroup, error) {
	seen := make(map[string]struct{}, len(rows))
	latest := make([]domain.AssignJob, 0, len(rows))
	var userIDs, projectIDs, jobIDs []int64
	for _, row := range rows {
		key := groupKey(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		latest = append(latest, row)
		if uid := assigneeOf(row, byEmployee); uid != nil {
			userIDs = append(userIDs, *uid)
		}
		projectIDs = append(projectIDs, row.ProjectID)
		jobIDs = append(jobIDs, row.JobIDs...)
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	projects, err := s.projectRepo.GetByIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	jobs, err := s.jobRepo.ListByIDs(ctx, domain.NewJobIDs(jobIDs...))
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	jobsByID := make(map[int64]domain.Job, len(jobs))
	for _, j := range jobs {
		jobsByID[j.ID] = j
	}

	out := make([]domain.AssignmentGroup, 0, len(latest))
	for _, row := range latest {
		g := domain.AssignmentGroup{AssignJob: row, Project: projects[row.ProjectID], Jobs: []domain.Job{}}
		if uid := assigneeOf(row, byEmployee); uid != nil {
			g.User = domain.SummaryOf(users[*uid])
		}
		for _, id := range row.JobIDs {
			if j, ok := jobsByID[id]; ok {
				g.Jobs = append(g.Jobs, j)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

// JobsByStatus lists the jobs of assignments whose production axis is in
// status, for one production user or for all of them
func (s *AssignmentService) JobsByStatus(ctx context.Context, productionID *int64, status domain.ProductionStatus) ([]domain.AssignedJobRow, error) {
	rows, err := s.assignRepo.List(ctx, repository.AssignJobFilters{
		ProductionID:     productionID,
		ProductionStatus: []domain.ProductionStatus{status},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	var jobIDs, projectIDs []int64
	for _, row := range rows {
		if row.ProductionID == nil {
			continue
		}
		jobIDs = append(jobIDs, row.JobIDs...)
		projectIDs = append(projectIDs, row.ProjectID)
	}
	jobs, err := s.jobRepo.ListByIDs(ctx, domain.NewJobIDs(jobIDs...))
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	projects, err := s.projectRepo.GetByIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	jobsByID := make(map[int64]domain.Job, len(jobs))
	for _, j := range jobs {
		jobsByID[j.ID] = j
	}

	out := []domain.AssignedJobRow{}
	for _, row := range rows {
		if row.ProductionID == nil {
			continue
		}
		for _, id := range row.JobIDs {
			j, ok := jobsByID[id]
			if !ok {
				continue
			}
			r := domain.AssignedJobRow{
				Job:              j,
				AssignJobID:      row.ID,
				EmployeeID:       row.EmployeeID,
				ProductionID:     row.ProductionID,
				TaskDescription:  row.TaskDescription,
				TimeBudget:       row.TimeBudget,
				AdminStatus:      row.AdminStatus,
				ProductionStatus: row.ProductionStatus,
				EmployeeStatus:   row.EmployeeStatus,
				AssignedAt:       row.CreatedAt,
			}
			if p := projects[row.ProjectID]; p != nil {
				r.ProjectNo = p.ProjectNo
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *AssignmentService) record(ctx context.Context, name string, assignIDs, jobIDs []int64, employeeID, productionID *int64, err error) {
	s.metrics.Transition(name, err)
	if err != nil {
		return
	}
	events.Emit(ctx, s.publisher, s.logger, events.TypeAssignment, events.AssignmentEvent{
		Transition:   name,
		AssignJobIDs: assignIDs,
		JobIDs:       jobIDs,
		EmployeeID:   employeeID,
		ProductionID: productionID,
	})
}

func idOf(a *domain.AssignJob) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}

func assigneeOf(row domain.AssignJob, byEmployee bool) *int64 {
	if byEmployee {
		return row.EmployeeID
	}
	return row.ProductionID
}

func groupKey(row domain.AssignJob) string {
	ids := append([]int64(nil), row.JobIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strconv.FormatInt(row.ProjectID, 10) + ":" + strings.Join(parts, ",")
}

// isNotFound reports whether err is any not-found error
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Stale returns assignments still in progress on the production or
// employee axis that have not been updated since cutoff
func (s *AssignmentService) Stale(ctx context.Context, cutoff time.Time) ([]domain.AssignJob, error) {
	var out []domain.AssignJob
	seen := make(map[int64]bool)
	filters := []repository.AssignJobFilters{
		{ProductionStatus: []domain.ProductionStatus{domain.ProductionInProgress}, UpdatedBefore: &cutoff},
		{EmployeeStatus: []domain.EmployeeStatus{domain.EmployeeInProgress}, UpdatedBefore: &cutoff},
	}
	for _, f := range filters {
		rows, err := s.assignRepo.List(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("list stale assignments: %w", err)
		}
		for _, row := range rows {
			if !seen[row.ID] {
				seen[row.ID] = true
				out = append(out, row)
			}
		}
	}
	return out, nil
}
