package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createNumberService(db *gorm.DB) *service.NumberSequenceService {
	return service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
}

func createJobService(t *testing.T, db *gorm.DB) *service.JobService {
	t.Helper()
	return service.NewJobService(
		repository.NewJobRepository(db),
		repository.NewProjectRepository(db),
		repository.NewAssignJobRepository(db),
		repository.NewTimeLogRepository(db),
		repository.NewUserRepository(db),
		createNumberService(db),
		zap.NewNop(),
		db,
	)
}

func TestNumberSequenceService_Next(t *testing.T) {
	db := testutil.NewTestDB(t)
	numbers := createNumberService(db)
	ctx := context.Background()

	t.Run("starts after the legacy base", func(t *testing.T) {
		n, err := numbers.Next(ctx, nil, repository.SequenceInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(5001), n)

		n, err = numbers.Next(ctx, nil, repository.SequenceInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(5002), n)
	})

	t.Run("seeds from the highest stored number", func(t *testing.T) {
		testutil.CreateProject(t, db, 2500, "Imported")
		n, err := numbers.Next(ctx, nil, repository.SequenceProject)
		require.NoError(t, err)
		assert.Equal(t, int64(2501), n)
	})

	t.Run("issues distinct numbers", func(t *testing.T) {
		seen := make(map[int64]bool)
		for i := 0; i < 20; i++ {
			n, err := numbers.Next(ctx, nil, repository.SequenceJob)
			require.NoError(t, err)
			assert.False(t, seen[n], "number %d issued twice", n)
			seen[n] = true
		}
	})

	t.Run("unknown sequence", func(t *testing.T) {
		_, err := numbers.Next(ctx, nil, "order_no")
		assert.Error(t, err)
	})

	t.Run("rolled back with the caller", func(t *testing.T) {
		before, err := numbers.Next(ctx, nil, repository.SequenceEstimate)
		require.NoError(t, err)

		_ = db.Transaction(func(tx *gorm.DB) error {
			_, err := numbers.Next(ctx, tx, repository.SequenceEstimate)
			require.NoError(t, err)
			return fmt.Errorf("abort")
		})

		after, err := numbers.Next(ctx, nil, repository.SequenceEstimate)
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
	})
}

func TestJobService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createJobService(t, db)
	ctx := context.Background()
	project := testutil.CreateProject(t, db, 2101, "Ice cream")

	job, err := svc.Create(ctx, &domain.CreateJobRequest{ProjectID: &project.ID, PackCode: "IC-1", Priority: " HIGH "})
	require.NoError(t, err)
	assert.Equal(t, int64(18543), job.JobNo)
	assert.Equal(t, project.ProjectNo, job.ProjectNo)
	assert.Equal(t, "high", job.Priority)
	assert.Equal(t, domain.JobActive, job.JobStatus)
	assert.Equal(t, domain.Unassigned, job.Assigned)
	assert.Equal(t, project.ProjectName, job.ProjectName)

	t.Run("default priority", func(t *testing.T) {
		job, err := svc.Create(ctx, &domain.CreateJobRequest{ProjectID: &project.ID})
		require.NoError(t, err)
		assert.Equal(t, "medium", job.Priority)
	})

	t.Run("project required", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateJobRequest{})
		assert.ErrorIs(t, err, service.ErrProjectIDRequired)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateJobRequest{ProjectID: testutil.Int64(404)})
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})
}

func TestJobService_ListByProject(t *testing.T) {
	db := testutil.NewTestDB(t)
	jobs := createJobService(t, db)
	assignments := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 2102, "Biscuits")
	j1 := testutil.CreateJob(t, db, project, 100)
	j2 := testutil.CreateJob(t, db, project, 101)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	a, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j1.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.TimeLog{JobID: j1.ID, ProjectID: project.ID, Time: testutil.String("01:30"), Overtime: testutil.String("00:45")}).Error)

	rows, err := jobs.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[int64]domain.JobWithAssignment{}
	for _, r := range rows {
		byID[r.ID] = r
	}
	require.NotNil(t, byID[j1.ID].AssignID)
	assert.Equal(t, a.ID, *byID[j1.ID].AssignID)
	assert.Equal(t, "Pia Prod", byID[j1.ID].AssignedName)
	assert.Equal(t, "2:15", byID[j1.ID].TotalTime)
	assert.Nil(t, byID[j2.ID].AssignID)
	assert.Equal(t, domain.Unassigned, byID[j2.ID].AssignedName)
}

func TestTimeLogService_PendingInstruction(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	logs := service.NewTimeLogService(
		repository.NewTimeLogRepository(db),
		repository.NewAssignJobRepository(db),
		repository.NewJobRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		zap.NewNop(),
	)
	assignments := createAssignmentService(t, db, nil)

	project := testutil.CreateProject(t, db, 2201, "Crisps")
	job := testutil.CreateJob(t, db, project, 300)
	emp := testutil.CreateUser(t, db, "Eli", "Emp", "employee")

	a, err := assignments.Assign(ctx, &domain.AssignJobRequest{
		ProjectID:       &project.ID,
		JobIDs:          []int64{job.ID},
		EmployeeID:      &emp.ID,
		TaskDescription: testutil.String("Resize the front panel"),
		TimeBudget:      testutil.String("04:00"),
	})
	require.NoError(t, err)

	view, err := logs.JobLogs(ctx, &emp.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, view.Role)
	require.Len(t, view.Logs, 1)
	assert.True(t, view.Logs[0].IsPending)
	assert.Equal(t, fmt.Sprintf("pending_%d", a.ID), view.Logs[0].ID.Pending)
	assert.Equal(t, "00:00:00", view.Logs[0].TotalTime)
	assert.Equal(t, "04:00", view.Owner.TimeBudget)

	created, err := logs.Create(ctx, &domain.TimeLogRequest{
		EmployeeID: &emp.ID,
		JobID:      job.ID,
		ProjectID:  project.ID,
		Time:       testutil.String("01:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.TaskDescriptionSnapshot)
	assert.Equal(t, "Resize the front panel", *created.TaskDescriptionSnapshot)

	view, err = logs.JobLogs(ctx, &emp.ID, job.ID)
	require.NoError(t, err)
	require.Len(t, view.Logs, 1)
	assert.False(t, view.Logs[0].IsPending)
	assert.Equal(t, created.ID, view.Logs[0].ID.ID)

	t.Run("admin view groups by assignee", func(t *testing.T) {
		view, err := logs.JobLogs(ctx, nil, job.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, view.Role)
		assert.Equal(t, job.JobNo, view.JobNo)
		require.Len(t, view.Productions, 1)
		assert.Len(t, view.Productions[0].Logs, 1)
	})

	t.Run("job id required", func(t *testing.T) {
		_, err := logs.JobLogs(ctx, nil, 0)
		assert.ErrorIs(t, err, service.ErrJobIDRequired)
	})
}

func TestCatalogService(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewCatalogService(repository.NewCatalogRepository(db), zap.NewNop())
	ctx := context.Background()

	a, err := svc.Create(ctx, domain.CatalogFlavour, &domain.CatalogRequest{Name: "  Mango "})
	require.NoError(t, err)
	assert.Equal(t, "Mango", a.Name)
	b, err := svc.Create(ctx, domain.CatalogFlavour, &domain.CatalogRequest{Name: "Lime"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CatalogBrand, &domain.CatalogRequest{Name: "Zesty"})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.CatalogFlavour)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CatalogFlavour, &domain.CatalogRequest{Name: " "})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bulk delete counts existing rows", func(t *testing.T) {
		n, err := svc.BulkDelete(ctx, domain.CatalogFlavour, []int64{a.ID, b.ID, 999})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		items, err := svc.List(ctx, domain.CatalogFlavour)
		require.NoError(t, err)
		assert.Empty(t, items)

		brands, err := svc.List(ctx, domain.CatalogBrand)
		require.NoError(t, err)
		assert.Len(t, brands, 1)
	})

	t.Run("bulk delete of unknown ids", func(t *testing.T) {
		_, err := svc.BulkDelete(ctx, domain.CatalogFlavour, []int64{999})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bulk delete needs ids", func(t *testing.T) {
		_, err := svc.BulkDelete(ctx, domain.CatalogFlavour, nil)
		assert.ErrorIs(t, err, service.ErrIDsRequired)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := svc.List(ctx, domain.CatalogKind("colour"))
		assert.Error(t, err)
	})
}
