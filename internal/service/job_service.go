package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobService handles jobs and the job side of assignments
type JobService struct {
	jobRepo     *repository.JobRepository
	projectRepo *repository.ProjectRepository
	assignRepo  *repository.AssignJobRepository
	timeLogRepo *repository.TimeLogRepository
	userRepo    *repository.UserRepository
	numbers     *NumberSequenceService
	logger      *zap.Logger
	db          *gorm.DB
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo *repository.JobRepository,
	projectRepo *repository.ProjectRepository,
	assignRepo *repository.AssignJobRepository,
	timeLogRepo *repository.TimeLogRepository,
	userRepo *repository.UserRepository,
	numbers *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *JobService {
	return &JobService{
		jobRepo:     jobRepo,
		projectRepo: projectRepo,
		assignRepo:  assignRepo,
		timeLogRepo: timeLogRepo,
		userRepo:    userRepo,
		numbers:     numbers,
		logger:      logger,
		db:          db,
	}
}

func normalizePriority(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "medium"
	}
	return p
}

// Create adds a job to an existing project with the next job number
func (s *JobService) Create(ctx context.Context, req *domain.CreateJobRequest) (*domain.JobView, error) {
	if req.ProjectID == nil {
		return nil, ErrProjectIDRequired
	}
	project, err := s.projectRepo.GetByID(ctx, *req.ProjectID)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	job := &domain.Job{
		ProjectID:   project.ID,
		ProjectName: req.ProjectName,
		BrandID:     req.BrandID,
		SubBrandID:  req.SubBrandID,
		FlavourID:   req.FlavourID,
		PackTypeID:  req.PackTypeID,
		PackCode:    req.PackCode,
		PackSize:    req.PackSize,
		Priority:    normalizePriority(req.Priority),
		EANBarcode:  req.EANBarcode,
		JobStatus:   domain.JobActive,
		Assigned:    domain.Unassigned,
	}
	if job.ProjectName == "" {
		job.ProjectName = project.ProjectName
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.numbers.Next(ctx, tx, repository.SequenceJob)
		if err != nil {
			return err
		}
		job.JobNo = no
		return s.jobRepo.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		s.logger.Error("failed to create job", zap.Int64("project_id", project.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("job created", zap.Int64("job_id", job.ID), zap.Int64("job_no", job.JobNo))
	return &domain.JobView{Job: *job, ProjectNo: project.ProjectNo}, nil
}

// GetByID returns a job with its project number
func (s *JobService) GetByID(ctx context.Context, id int64) (*domain.JobView, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	view := &domain.JobView{Job: *job}
	if p, err := s.projectRepo.GetByID(ctx, job.ProjectID); err == nil {
		view.ProjectNo = p.ProjectNo
	}
	return view, nil
}

// List returns every job with its project number
func (s *JobService) List(ctx context.Context) ([]domain.JobView, error) {
	jobs, err := s.jobRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ProjectID)
	}
	projects, err := s.projectRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	out := make([]domain.JobView, 0, len(jobs))
	for _, j := range jobs {
		v := domain.JobView{Job: j}
		if p := projects[j.ProjectID]; p != nil {
			v.ProjectNo = p.ProjectNo
		}
		out = append(out, v)
	}
	return out, nil
}

// Update overwrites a job's editable fields
func (s *JobService) Update(ctx context.Context, id int64, req *domain.UpdateJobRequest) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	if req.ProjectID != nil && *req.ProjectID != job.ProjectID {
		if _, err := s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			return nil, notFound(err, ErrProjectNotFound)
		}
		job.ProjectID = *req.ProjectID
	}
	if req.ProjectName != "" {
		job.ProjectName = req.ProjectName
	}
	job.BrandID = req.BrandID
	job.SubBrandID = req.SubBrandID
	job.FlavourID = req.FlavourID
	job.PackTypeID = req.PackTypeID
	job.PackCode = req.PackCode
	job.PackSize = req.PackSize
	job.Priority = normalizePriority(req.Priority)
	job.EANBarcode = req.EANBarcode
	job.JobStatus = req.JobStatus
	if job.JobStatus == "" {
		job.JobStatus = domain.JobActive
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// Delete removes a job, its time logs and its membership in every assignment.
// An assignment left without jobs is deleted. All of it happens in one
// transaction.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	if _, err := s.jobRepo.GetByID(ctx, id); err != nil {
		return notFound(err, ErrJobNotFound)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.timeLogRepo.WithTx(tx).DeleteByJob(ctx, id); err != nil {
			return fmt.Errorf("failed to delete time logs: %w", err)
		}

		assignRepo := s.assignRepo.WithTx(tx)
		rows, err := assignRepo.ListContainingJobAnyProject(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		for _, row := range rows {
			remaining := row.JobIDs.Without(id)
			if len(remaining) == 0 {
				if _, err := assignRepo.Delete(ctx, row.ID); err != nil {
					return fmt.Errorf("failed to delete assignment %d: %w", row.ID, err)
				}
				continue
			}
			if err := assignRepo.UpdateJobIDs(ctx, row.ID, remaining); err != nil {
				return fmt.Errorf("failed to update assignment %d: %w", row.ID, err)
			}
		}

		if _, err := s.jobRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete job", zap.Int64("job_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("job deleted", zap.Int64("job_id", id))
	return nil
}

// ListByProject returns a project's jobs with their current assignment and
// the time booked on each
func (s *JobService) ListByProject(ctx context.Context, projectID int64) ([]domain.JobWithAssignment, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	jobs, err := s.jobRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	rows, err := s.assignRepo.List(ctx, repository.AssignJobFilters{ProjectID: &projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	logs, err := s.timeLogRepo.List(ctx, repository.TimeLogFilters{ProjectID: &projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list time logs: %w", err)
	}

	totals := make(map[int64]time.Duration)
	for i := range logs {
		totals[logs[i].JobID] += logs[i].Total()
	}

	var userIDs []int64
	for _, j := range jobs {
		if uid, ok := assignedUserID(j.Assigned); ok {
			userIDs = append(userIDs, uid)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make([]domain.JobWithAssignment, 0, len(jobs))
	for _, j := range jobs {
		v := domain.JobWithAssignment{
			Job:          j,
			ProjectNo:    project.ProjectNo,
			AssignedName: domain.Unassigned,
			TotalTime:    domain.FormatHoursMinutes(totals[j.ID]),
		}
		// rows are newest first, so the first match is the current assignment
		for _, row := range rows {
			if row.JobIDs.Contains(j.ID) {
				id := row.ID
				v.AssignID = &id
				v.AdminStatus = row.AdminStatus
				v.ProductionStatus = row.ProductionStatus
				v.EmployeeStatus = row.EmployeeStatus
				break
			}
		}
		if uid, ok := assignedUserID(j.Assigned); ok {
			if u := users[uid]; u != nil {
				v.AssignedName = u.FullName()
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// History returns the jobs worked on by a production (or employee) user,
// ordered by the projects' expected completion date
func (s *JobService) History(ctx context.Context, userID int64, asEmployee bool) ([]domain.JobHistoryEntry, error) {
	f := repository.AssignJobFilters{ProductionID: &userID}
	if asEmployee {
		f = repository.AssignJobFilters{EmployeeID: &userID}
	}
	rows, err := s.assignRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	var jobIDs, projectIDs, userIDs []int64
	for _, row := range rows {
		jobIDs = append(jobIDs, row.JobIDs...)
		projectIDs = append(projectIDs, row.ProjectID)
		if row.EmployeeID != nil {
			userIDs = append(userIDs, *row.EmployeeID)
		}
		if row.ProductionID != nil {
			userIDs = append(userIDs, *row.ProductionID)
		}
	}
	jobs, err := s.jobRepo.ListByIDs(ctx, domain.NewJobIDs(jobIDs...))
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	projects, err := s.projectRepo.GetByIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	jobsByID := make(map[int64]domain.Job, len(jobs))
	for _, j := range jobs {
		jobsByID[j.ID] = j
	}

	out := []domain.JobHistoryEntry{}
	for _, row := range rows {
		for _, id := range row.JobIDs {
			j, ok := jobsByID[id]
			if !ok {
				continue
			}
			e := domain.JobHistoryEntry{
				AssignJobID: row.ID,
				JobID:       j.ID,
				JobNo:       j.JobNo,
				ProjectID:   j.ProjectID,
				ProjectName: j.ProjectName,
				PackCode:    j.PackCode,
				PackSize:    j.PackSize,
				Priority:    j.Priority,
				AssignedTo:  assigneeName(row, users),
				TotalTime:   row.TimeBudget,
				Status:      string(row.ProductionStatus),
				CreatedAt:   row.CreatedAt,
			}
			if asEmployee {
				e.Status = string(row.EmployeeStatus)
			}
			if p := projects[row.ProjectID]; p != nil {
				e.ProjectNo = p.ProjectNo
				e.ExpectedCompletionDate = p.ExpectedCompletionDate
			}
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpectedCompletionDate, out[j].ExpectedCompletionDate
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.Before(b.Time)
	})
	return out, nil
}

// assignedUserID parses the user id out of a jobs.assigned value
func assignedUserID(assigned string) (int64, bool) {
	if assigned == "" || assigned == domain.Unassigned {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(assigned, "Employee-"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// assigneeName prefers the employee, then the production user
func assigneeName(row domain.AssignJob, users map[int64]*domain.User) string {
	if row.EmployeeID != nil {
		if u := users[*row.EmployeeID]; u != nil {
			return u.FullName()
		}
	}
	if row.ProductionID != nil {
		if u := users[*row.ProductionID]; u != nil {
			return u.FullName()
		}
	}
	return domain.Unassigned
}
