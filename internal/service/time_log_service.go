package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"go.uber.org/zap"
)

const zeroClock = "00:00:00"

// TimeLogService handles time logs and the pending-instruction view
type TimeLogService struct {
	logRepo     *repository.TimeLogRepository
	assignRepo  *repository.AssignJobRepository
	jobRepo     *repository.JobRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

// NewTimeLogService creates a new TimeLogService
func NewTimeLogService(
	logRepo *repository.TimeLogRepository,
	assignRepo *repository.AssignJobRepository,
	jobRepo *repository.JobRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *TimeLogService {
	return &TimeLogService{
		logRepo:     logRepo,
		assignRepo:  assignRepo,
		jobRepo:     jobRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// latestFor returns the newest assignment in rows (ordered newest first)
// held by the given employee or production user, created no later than
// before when before is non-zero
func latestFor(rows []domain.AssignJob, employeeID, productionID *int64, before time.Time) *domain.AssignJob {
	for i := range rows {
		a := &rows[i]
		if !before.IsZero() && a.CreatedAt.After(before) {
			continue
		}
		if sameID(a.EmployeeID, employeeID) || sameID(a.ProductionID, productionID) {
			return a
		}
	}
	return nil
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Create stores a log with the task description and time budget of the
// assignment in effect for the logging user
func (s *TimeLogService) Create(ctx context.Context, req *domain.TimeLogRequest) (*domain.TimeLog, error) {
	if req.JobID == 0 || req.ProjectID == 0 {
		return nil, ErrRequiredFieldsMissing
	}

	assignments, err := s.assignRepo.ListContainingJob(ctx, req.ProjectID, req.JobID)
	if err != nil {
		return nil, err
	}

	log := &domain.TimeLog{
		Date:         req.Date,
		EmployeeID:   req.EmployeeID,
		ProductionID: req.ProductionID,
		JobID:        req.JobID,
		ProjectID:    req.ProjectID,
		Time:         nonEmpty(req.Time),
		Overtime:     nonEmpty(req.Overtime),
	}
	if current := latestFor(assignments, req.EmployeeID, req.ProductionID, time.Time{}); current != nil {
		log.TaskDescriptionSnapshot = current.TaskDescription
		log.TimeBudgetSnapshot = current.TimeBudget
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		s.logger.Error("failed to create time log", zap.Int64("job_id", req.JobID), zap.Error(err))
		return nil, err
	}
	return log, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Update changes the live fields of a log. Snapshots are never rewritten.
func (s *TimeLogService) Update(ctx context.Context, id int64, req *domain.UpdateTimeLogRequest) (*domain.TimeLog, error) {
	log, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTimeLogNotFound)
	}

	if req.Date != nil {
		log.Date = *req.Date
	}
	if req.EmployeeID != nil {
		log.EmployeeID = req.EmployeeID
	}
	if req.ProductionID != nil {
		log.ProductionID = req.ProductionID
	}
	if req.JobID != nil {
		log.JobID = *req.JobID
	}
	if req.ProjectID != nil {
		log.ProjectID = *req.ProjectID
	}
	if req.Time != nil {
		log.Time = req.Time
	}
	if req.Overtime != nil {
		log.Overtime = req.Overtime
	}

	if err := s.logRepo.Update(ctx, log); err != nil {
		s.logger.Error("failed to update time log", zap.Int64("time_log_id", id), zap.Error(err))
		return nil, err
	}
	return log, nil
}

// Delete removes a log
func (s *TimeLogService) Delete(ctx context.Context, id int64) error {
	rows, err := s.logRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete time log", zap.Int64("time_log_id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrTimeLogNotFound
	}
	return nil
}

// GetByID returns one log
func (s *TimeLogService) GetByID(ctx context.Context, id int64) (*domain.TimeLogView, error) {
	log, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTimeLogNotFound)
	}
	views, err := s.views(ctx, []domain.TimeLog{*log})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns every log
func (s *TimeLogService) List(ctx context.Context) ([]domain.TimeLogView, error) {
	return s.list(ctx, repository.TimeLogFilters{})
}

// ListByEmployee returns the logs booked by an employee
func (s *TimeLogService) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.TimeLogView, error) {
	return s.list(ctx, repository.TimeLogFilters{EmployeeID: &employeeID})
}

// ListByProduction returns the logs booked by a production user
func (s *TimeLogService) ListByProduction(ctx context.Context, productionID int64) ([]domain.TimeLogView, error) {
	return s.list(ctx, repository.TimeLogFilters{ProductionID: &productionID})
}

// ListAllEmployee returns the logs booked by users with the employee role
func (s *TimeLogService) ListAllEmployee(ctx context.Context) ([]domain.TimeLogView, error) {
	return s.list(ctx, repository.TimeLogFilters{EmployeeRole: true})
}

func (s *TimeLogService) list(ctx context.Context, f repository.TimeLogFilters) ([]domain.TimeLogView, error) {
	logs, err := s.logRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, logs)
}

// logContext holds what views need beyond the log rows
type logContext struct {
	jobs        map[int64]domain.Job
	projects    map[int64]*domain.Project
	users       map[int64]*domain.User
	assignments map[int64][]domain.AssignJob
}

func (s *TimeLogService) loadContext(ctx context.Context, logs []domain.TimeLog, extraUsers ...int64) (*logContext, error) {
	var jobIDs, projectIDs, userIDs []int64
	for _, l := range logs {
		jobIDs = append(jobIDs, l.JobID)
		projectIDs = append(projectIDs, l.ProjectID)
		userIDs = append(userIDs, ptrIDs(l.EmployeeID)...)
		userIDs = append(userIDs, ptrIDs(l.ProductionID)...)
	}
	userIDs = append(userIDs, extraUsers...)

	jobs, err := s.jobRepo.ListByIDs(ctx, domain.NewJobIDs(jobIDs...))
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.GetByIDs(ctx, domain.NewJobIDs(projectIDs...))
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, domain.NewJobIDs(userIDs...))
	if err != nil {
		return nil, err
	}

	lc := &logContext{
		jobs:        make(map[int64]domain.Job, len(jobs)),
		projects:    projects,
		users:       users,
		assignments: make(map[int64][]domain.AssignJob),
	}
	for _, j := range jobs {
		lc.jobs[j.ID] = j
	}
	for _, pid := range domain.NewJobIDs(projectIDs...) {
		projectID := pid
		rows, err := s.assignRepo.List(ctx, repository.AssignJobFilters{ProjectID: &projectID})
		if err != nil {
			return nil, err
		}
		lc.assignments[pid] = rows
	}
	return lc, nil
}

func (lc *logContext) userName(id *int64) string {
	if id == nil {
		return ""
	}
	if u, ok := lc.users[*id]; ok {
		return u.FullName()
	}
	return ""
}

// assignmentFor returns the assignment in effect for the log's user when the
// log was written
func (lc *logContext) assignmentFor(l *domain.TimeLog) *domain.AssignJob {
	var rows []domain.AssignJob
	for _, a := range lc.assignments[l.ProjectID] {
		if a.JobIDs.Contains(l.JobID) {
			rows = append(rows, a)
		}
	}
	return latestFor(rows, l.EmployeeID, l.ProductionID, l.CreatedAt)
}

func (lc *logContext) view(l domain.TimeLog) domain.TimeLogView {
	v := domain.TimeLogView{
		ID:              domain.LogID{ID: l.ID},
		Date:            l.Date,
		EmployeeID:      l.EmployeeID,
		ProductionID:    l.ProductionID,
		JobID:           l.JobID,
		ProjectID:       l.ProjectID,
		Time:            clockOr(l.Time),
		Overtime:        clockOr(l.Overtime),
		TotalTime:       domain.FormatClock(l.Total()),
		TaskDescription: l.TaskDescriptionSnapshot,
		TimeBudget:      l.TimeBudgetSnapshot,
	}
	if job, ok := lc.jobs[l.JobID]; ok {
		no := job.JobNo
		v.JobNo = &no
		v.AssignStatus = job.Assigned
	}
	if p, ok := lc.projects[l.ProjectID]; ok {
		v.ProjectName = p.ProjectName
	}
	if v.EmployeeName = lc.userName(l.EmployeeID); v.EmployeeName == "" {
		v.EmployeeName = lc.userName(l.ProductionID)
	}
	if v.TaskDescription == nil || v.TimeBudget == nil {
		if a := lc.assignmentFor(&l); a != nil {
			if v.TaskDescription == nil {
				v.TaskDescription = a.TaskDescription
			}
			if v.TimeBudget == nil {
				v.TimeBudget = a.TimeBudget
			}
		}
	}
	return v
}

func clockOr(s *string) string {
	if s == nil || *s == "" {
		return zeroClock
	}
	return *s
}

func (s *TimeLogService) views(ctx context.Context, logs []domain.TimeLog) ([]domain.TimeLogView, error) {
	lc, err := s.loadContext(ctx, logs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TimeLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, lc.view(l))
	}
	return out, nil
}

// pendingView is the synthetic entry shown for an instruction nobody has
// logged against yet
func pendingView(a *domain.AssignJob, name string) domain.TimeLogView {
	return domain.TimeLogView{
		ID:              domain.LogID{Pending: "pending_" + strconv.FormatInt(a.ID, 10)},
		Date:            domain.NewDate(a.CreatedAt),
		EmployeeID:      a.EmployeeID,
		ProductionID:    a.ProductionID,
		ProjectID:       a.ProjectID,
		Time:            zeroClock,
		Overtime:        zeroClock,
		TotalTime:       zeroClock,
		TaskDescription: a.TaskDescription,
		TimeBudget:      a.TimeBudget,
		EmployeeName:    name,
		AssignStatus:    "assigned",
		IsPending:       true,
	}
}

// isLogged reports whether some log of the assignee carries the assignment's
// current task description as its snapshot
func isLogged(logs []domain.TimeLog, a *domain.AssignJob, matchAssignee bool) bool {
	for i := range logs {
		l := &logs[i]
		if matchAssignee && !sameID(l.EmployeeID, a.EmployeeID) && !sameID(l.ProductionID, a.ProductionID) {
			continue
		}
		if sameText(l.TaskDescriptionSnapshot, a.TaskDescription) {
			return true
		}
	}
	return false
}

// JobLogs returns the logs of a job scoped by the requesting user's role.
// Employees and production users see their own logs under a header built
// from their latest assignment; without a user, or for admins, logs are
// grouped per assignee. In both cases an assignment whose instruction has no
// matching log yet is shown as a pending entry first.
func (s *TimeLogService) JobLogs(ctx context.Context, userID *int64, jobID int64) (*domain.JobLogsView, error) {
	if jobID == 0 {
		return nil, ErrJobIDRequired
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}

	role := domain.RoleAdmin
	var user *domain.User
	if userID != nil {
		if u, err := s.userRepo.GetByID(ctx, *userID); err == nil {
			user = u
			if u.RoleName != "" {
				role = u.RoleName
			}
		}
	}

	f := repository.TimeLogFilters{JobID: &jobID}
	switch role {
	case domain.RoleEmployee:
		f.EmployeeID = userID
	case domain.RoleProduction:
		f.ProductionID = userID
	}
	logs, err := s.logRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignRepo.ListContainingJob(ctx, job.ProjectID, jobID)
	if err != nil {
		return nil, err
	}

	var extra []int64
	for _, a := range assignments {
		extra = append(extra, ptrIDs(a.EmployeeID)...)
		extra = append(extra, ptrIDs(a.ProductionID)...)
	}
	lc, err := s.loadContext(ctx, logs, extra...)
	if err != nil {
		return nil, err
	}
	lc.jobs[job.ID] = *job

	views := make([]domain.TimeLogView, 0, len(logs)+1)
	for _, l := range logs {
		v := lc.view(l)
		if a := lc.assignmentFor(&l); a != nil {
			v.Date = domain.NewDate(a.CreatedAt)
		}
		views = append(views, v)
	}

	if role == domain.RoleEmployee || role == domain.RoleProduction {
		return s.ownLogs(lc, role, user, assignments, logs, views), nil
	}
	return s.groupedLogs(lc, job, assignments, logs, views), nil
}

func (s *TimeLogService) ownLogs(lc *logContext, role string, user *domain.User, assignments []domain.AssignJob, logs []domain.TimeLog, views []domain.TimeLogView) *domain.JobLogsView {
	latest := latestFor(assignments, &user.ID, &user.ID, time.Time{})

	owner := &domain.LogOwner{UserID: user.ID, Name: user.FullName(), TimeBudget: zeroClock}
	if latest != nil {
		if !isLogged(logs, latest, false) {
			name := lc.userName(latest.EmployeeID)
			if name == "" {
				name = user.FullName()
			}
			pending := pendingView(latest, name)
			views = append([]domain.TimeLogView{pending}, views...)
		}
		owner.AssignedEmployeeName = lc.userName(latest.EmployeeID)
		if latest.TimeBudget != nil && *latest.TimeBudget != "" {
			owner.TimeBudget = *latest.TimeBudget
		}
		owner.TaskDescription = latest.TaskDescription
		owner.CreatedAt = latest.CreatedAt
	} else if len(views) > 0 {
		if views[0].TimeBudget != nil && *views[0].TimeBudget != "" {
			owner.TimeBudget = *views[0].TimeBudget
		}
		owner.TaskDescription = views[0].TaskDescription
	}

	return &domain.JobLogsView{Role: role, Owner: owner, Logs: views}
}

func (s *TimeLogService) groupedLogs(lc *logContext, job *domain.Job, assignments []domain.AssignJob, logs []domain.TimeLog, views []domain.TimeLogView) *domain.JobLogsView {
	seen := make(map[string]bool)
	var pending []domain.TimeLogView
	for i := range assignments {
		a := &assignments[i]
		key := assigneeKey(a.EmployeeID, a.ProductionID)
		if seen[key] {
			continue
		}
		seen[key] = true
		if isLogged(logs, a, true) {
			continue
		}
		name := lc.userName(a.EmployeeID)
		if a.EmployeeID == nil {
			name = lc.userName(a.ProductionID)
		}
		pending = append(pending, pendingView(a, name))
	}
	all := append(pending, views...)

	var groups []domain.ProductionLogGroup
	index := make(map[string]int)
	for _, v := range all {
		key := groupKeyOf(v)
		i, ok := index[key]
		if !ok {
			g := domain.ProductionLogGroup{
				ProductionID:    v.ProductionID,
				ProductionName:  lc.userName(v.ProductionID),
				TimeBudget:      zeroClock,
				TaskDescription: v.TaskDescription,
				Logs:            []domain.TimeLogView{},
			}
			if v.ProductionID == nil {
				g.EmployeeID = v.EmployeeID
				g.ProductionName = v.EmployeeName
			}
			if g.ProductionName == "" {
				g.ProductionName = v.EmployeeName
			}
			if v.TimeBudget != nil && *v.TimeBudget != "" {
				g.TimeBudget = *v.TimeBudget
			}
			g.CreatedAt = v.Date.Time
			groups = append(groups, g)
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Logs = append(groups[i].Logs, v)
	}
	if groups == nil {
		groups = []domain.ProductionLogGroup{}
	}

	return &domain.JobLogsView{
		Role:        domain.RoleAdmin,
		JobID:       job.ID,
		JobNo:       job.JobNo,
		Productions: groups,
	}
}

func assigneeKey(employeeID, productionID *int64) string {
	if employeeID != nil {
		return fmt.Sprintf("emp_%d", *employeeID)
	}
	if productionID != nil {
		return fmt.Sprintf("prod_%d", *productionID)
	}
	return "unassigned"
}

func groupKeyOf(v domain.TimeLogView) string {
	switch {
	case v.ProductionID != nil:
		return fmt.Sprintf("prod_%d", *v.ProductionID)
	case v.EmployeeID != nil:
		return fmt.Sprintf("emp_direct_%d", *v.EmployeeID)
	}
	return "unassigned"
}
