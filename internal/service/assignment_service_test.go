package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/events"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAssignmentService(t *testing.T, db *gorm.DB, publisher events.Publisher) *service.AssignmentService {
	t.Helper()
	return service.NewAssignmentService(
		repository.NewAssignJobRepository(db),
		repository.NewJobRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		publisher,
		nil,
		zap.NewNop(),
		db,
	)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func loadJob(t *testing.T, db *gorm.DB, id int64) domain.Job {
	t.Helper()
	var j domain.Job
	require.NoError(t, db.First(&j, id).Error)
	return j
}

func loadAssignment(t *testing.T, db *gorm.DB, id int64) domain.AssignJob {
	t.Helper()
	var a domain.AssignJob
	require.NoError(t, db.First(&a, id).Error)
	return a
}

func TestAssignmentService_Assign(t *testing.T) {
	db := testutil.NewTestDB(t)
	rec := &events.Recorder{}
	svc := createAssignmentService(t, db, rec)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1001, "Juice relaunch")
	j1 := testutil.CreateJob(t, db, project, 5001)
	j2 := testutil.CreateJob(t, db, project, 5002)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	emp := testutil.CreateUser(t, db, "Eli", "Emp", "employee")

	t.Run("production only", func(t *testing.T) {
		a, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:    &project.ID,
			JobIDs:       []int64{j1.ID, j2.ID},
			ProductionID: &prod.ID,
			TimeBudget:   testutil.String("02:00"),
		})
		require.NoError(t, err)

		stored := loadAssignment(t, db, a.ID)
		assert.Equal(t, domain.AdminInProgress, stored.AdminStatus)
		assert.Equal(t, domain.ProductionInProgress, stored.ProductionStatus)
		assert.Equal(t, domain.EmployeeNotApplicable, stored.EmployeeStatus)

		for _, id := range []int64{j1.ID, j2.ID} {
			job := loadJob(t, db, id)
			assert.Equal(t, domain.JobInProgress, job.JobStatus)
			assert.Equal(t, idString(prod.ID), job.Assigned)
		}
	})

	t.Run("identical request updates the existing row", func(t *testing.T) {
		first, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:    &project.ID,
			JobIDs:       []int64{j2.ID, j1.ID},
			ProductionID: &prod.ID,
			TimeBudget:   testutil.String("03:30"),
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.AssignJob{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, "03:30", *loadAssignment(t, db, first.ID).TimeBudget)
	})

	t.Run("employee only", func(t *testing.T) {
		j3 := testutil.CreateJob(t, db, project, 5003)
		a, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:  &project.ID,
			JobIDs:     []int64{j3.ID},
			EmployeeID: &emp.ID,
		})
		require.NoError(t, err)

		stored := loadAssignment(t, db, a.ID)
		assert.Equal(t, domain.AdminComplete, stored.AdminStatus)
		assert.Equal(t, domain.ProductionNotApplicable, stored.ProductionStatus)
		assert.Equal(t, domain.EmployeeComplete, stored.EmployeeStatus)
		assert.Equal(t, domain.EmployeeLabel(emp.ID), loadJob(t, db, j3.ID).Assigned)
	})

	t.Run("employee and production together", func(t *testing.T) {
		j4 := testutil.CreateJob(t, db, project, 5004)
		a, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:    &project.ID,
			JobIDs:       []int64{j4.ID},
			EmployeeID:   &emp.ID,
			ProductionID: &prod.ID,
		})
		require.NoError(t, err)

		stored := loadAssignment(t, db, a.ID)
		assert.Equal(t, domain.AdminInProgress, stored.AdminStatus)
		assert.Equal(t, domain.ProductionNotApplicable, stored.ProductionStatus)
		assert.Equal(t, domain.EmployeeNotApplicable, stored.EmployeeStatus)

		job := loadJob(t, db, j4.ID)
		assert.Equal(t, domain.JobInProgress, job.JobStatus)
		assert.Equal(t, domain.Unassigned, job.Assigned)
	})

	t.Run("missing assignee", func(t *testing.T) {
		_, err := svc.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j1.ID}})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing job ids", func(t *testing.T) {
		_, err := svc.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, ProductionID: &prod.ID})
		assert.ErrorIs(t, err, service.ErrRequiredFieldsMissing)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:    testutil.Int64(9999),
			JobIDs:       []int64{j1.ID},
			ProductionID: &prod.ID,
		})
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})

	assert.NotEmpty(t, rec.Events())
	assert.Equal(t, events.TypeAssignment, rec.Events()[0].Type)
}

func TestAssignmentService_ProductionComplete(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1002, "Snack bar")
	j10 := testutil.CreateJob(t, db, project, 6010)
	j11 := testutil.CreateJob(t, db, project, 6011)
	other := testutil.CreateJob(t, db, project, 6012)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	a, err := svc.Assign(ctx, &domain.AssignJobRequest{
		ProjectID:    &project.ID,
		JobIDs:       []int64{j10.ID, j11.ID},
		ProductionID: &prod.ID,
	})
	require.NoError(t, err)

	done, err := svc.ProductionComplete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminComplete, done.AdminStatus)

	stored := loadAssignment(t, db, a.ID)
	assert.Equal(t, domain.AdminComplete, stored.AdminStatus)
	assert.Equal(t, domain.ProductionComplete, stored.ProductionStatus)

	for _, id := range []int64{j10.ID, j11.ID} {
		job := loadJob(t, db, id)
		assert.Equal(t, domain.JobComplete, job.JobStatus)
		assert.Equal(t, domain.Unassigned, job.Assigned)
	}
	assert.Equal(t, domain.JobActive, loadJob(t, db, other.ID).JobStatus)

	_, err = svc.ProductionComplete(ctx, 4242)
	assert.ErrorIs(t, err, service.ErrAssignJobNotFound)
}

func TestAssignmentService_DelegateAndEmployeeTransitions(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1003, "Tea tins")
	j1 := testutil.CreateJob(t, db, project, 7001)
	j2 := testutil.CreateJob(t, db, project, 7002)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	emp := testutil.CreateUser(t, db, "Eli", "Emp", "employee")

	a, err := svc.Assign(ctx, &domain.AssignJobRequest{
		ProjectID:    &project.ID,
		JobIDs:       []int64{j1.ID, j2.ID},
		ProductionID: &prod.ID,
	})
	require.NoError(t, err)

	n, err := svc.ProductionAssign(ctx, &domain.ProductionAssignRequest{AssignJobIDs: []int64{a.ID}, EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored := loadAssignment(t, db, a.ID)
	assert.Equal(t, domain.EmployeeInProgress, stored.EmployeeStatus)
	assert.Equal(t, domain.ProductionInProgress, stored.ProductionStatus)
	require.NotNil(t, stored.EmployeeID)
	assert.Equal(t, emp.ID, *stored.EmployeeID)
	assert.Equal(t, idString(emp.ID), loadJob(t, db, j1.ID).Assigned)

	t.Run("complete one job", func(t *testing.T) {
		require.NoError(t, svc.EmployeeComplete(ctx, a.ID, j1.ID))
		stored := loadAssignment(t, db, a.ID)
		assert.Equal(t, domain.EmployeeComplete, stored.EmployeeStatus)
		assert.Equal(t, domain.ProductionComplete, stored.ProductionStatus)

		job := loadJob(t, db, j1.ID)
		assert.Equal(t, domain.JobInProgress, job.JobStatus)
		assert.Equal(t, idString(emp.ID), job.Assigned)
	})

	t.Run("reject the other job", func(t *testing.T) {
		require.NoError(t, svc.EmployeeReject(ctx, a.ID, j2.ID))
		job := loadJob(t, db, j2.ID)
		assert.Equal(t, domain.JobReject, job.JobStatus)
		assert.Equal(t, domain.Unassigned, job.Assigned)
	})

	t.Run("job outside the assignment", func(t *testing.T) {
		stray := testutil.CreateJob(t, db, project, 7003)
		err := svc.EmployeeComplete(ctx, a.ID, stray.ID)
		assert.ErrorIs(t, err, service.ErrJobNotInAssignment)
		assert.Equal(t, domain.JobActive, loadJob(t, db, stray.ID).JobStatus)
	})

	t.Run("delegate requires ids and employee", func(t *testing.T) {
		_, err := svc.ProductionAssign(ctx, &domain.ProductionAssignRequest{EmployeeID: &emp.ID})
		assert.ErrorIs(t, err, service.ErrRequiredFieldsMissing)
	})
}

func TestAssignmentService_ProductionReturnAndReject(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1004, "Coffee pods")
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	assign := func(no int64) (*domain.AssignJob, domain.Job) {
		j := testutil.CreateJob(t, db, project, no)
		a, err := svc.Assign(ctx, &domain.AssignJobRequest{
			ProjectID:    &project.ID,
			JobIDs:       []int64{j.ID},
			ProductionID: &prod.ID,
		})
		require.NoError(t, err)
		return a, *j
	}

	t.Run("return closes the jobs", func(t *testing.T) {
		a, j := assign(8001)
		res, err := svc.ProductionReturn(ctx, []int64{a.ID}, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID}, res.AssignJobIDs)
		assert.Equal(t, []int64{j.ID}, res.AffectedJobIDs)

		stored := loadAssignment(t, db, a.ID)
		assert.Equal(t, domain.AdminReturn, stored.AdminStatus)
		assert.Equal(t, domain.ProductionReturn, stored.ProductionStatus)
		assert.Equal(t, domain.JobComplete, loadJob(t, db, j.ID).JobStatus)
	})

	t.Run("return with job status", func(t *testing.T) {
		a, j := assign(8002)
		_, err := svc.ProductionReturn(ctx, []int64{a.ID}, true)
		require.NoError(t, err)
		assert.Equal(t, domain.JobReturn, loadJob(t, db, j.ID).JobStatus)
	})

	t.Run("reject", func(t *testing.T) {
		a, j := assign(8003)
		_, err := svc.ProductionReject(ctx, []int64{a.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.AdminReject, loadAssignment(t, db, a.ID).AdminStatus)
		job := loadJob(t, db, j.ID)
		assert.Equal(t, domain.JobReject, job.JobStatus)
		assert.Equal(t, domain.Unassigned, job.Assigned)
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := svc.ProductionReject(ctx, nil)
		assert.ErrorIs(t, err, service.ErrNoAssignJobIDs)
	})

	t.Run("unknown ids", func(t *testing.T) {
		_, err := svc.ProductionReturn(ctx, []int64{9999}, false)
		assert.ErrorIs(t, err, service.ErrAssignJobNotFound)
	})
}

func TestAssignmentService_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1005, "Soap")
	j := testutil.CreateJob(t, db, project, 9001)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	a, err := svc.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), service.ErrAssignJobNotFound)
	// jobs keep whatever the assignment last wrote
	assert.Equal(t, domain.JobInProgress, loadJob(t, db, j.ID).JobStatus)
}

func TestAssignmentService_Groups(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1006, "Cereal")
	j1 := testutil.CreateJob(t, db, project, 9101)
	j2 := testutil.CreateJob(t, db, project, 9102)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	_, err := svc.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j1.ID, j2.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)

	groups, err := svc.ListByProduction(ctx, prod.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Jobs, 2)
	require.NotNil(t, groups[0].User)
	assert.Equal(t, prod.ID, groups[0].User.ID)
	require.NotNil(t, groups[0].Project)
	assert.Equal(t, project.ProjectNo, groups[0].Project.ProjectNo)

	rows, err := svc.JobsByStatus(ctx, &prod.ID, domain.ProductionInProgress)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAssignmentService_Stale(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 1007, "Water")
	j := testutil.CreateJob(t, db, project, 9201)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	a, err := svc.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)

	old := time.Now().UTC().Add(-96 * time.Hour)
	require.NoError(t, db.Model(&domain.AssignJob{}).Where("id = ?", a.ID).UpdateColumn("updated_at", old).Error)

	stale, err := svc.Stale(ctx, time.Now().UTC().Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, a.ID, stale[0].ID)

	fresh, err := svc.Stale(ctx, old.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestJobService_Delete(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*gorm.DB, *service.JobService, *service.AssignmentService, *domain.Project) {
		db := testutil.NewTestDB(t)
		return db, createJobService(t, db), createAssignmentService(t, db, nil), testutil.CreateProject(t, db, 2001, "Chocolate")
	}

	t.Run("removes the job from every assignment", func(t *testing.T) {
		db, jobs, assignments, project := setup(t)
		j7 := testutil.CreateJob(t, db, project, 7)
		j8 := testutil.CreateJob(t, db, project, 8)
		prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
		emp := testutil.CreateUser(t, db, "Eli", "Emp", "employee")

		both, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j7.ID, j8.ID}, ProductionID: &prod.ID})
		require.NoError(t, err)
		only, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j7.ID}, EmployeeID: &emp.ID})
		require.NoError(t, err)
		require.NoError(t, db.Create(&domain.TimeLog{JobID: j7.ID, ProjectID: project.ID, Time: testutil.String("01:00")}).Error)

		require.NoError(t, jobs.Delete(ctx, j7.ID))

		assert.Equal(t, domain.JobIDs{j8.ID}, loadAssignment(t, db, both.ID).JobIDs)
		assert.ErrorIs(t, db.First(&domain.AssignJob{}, only.ID).Error, gorm.ErrRecordNotFound)
		assert.ErrorIs(t, db.First(&domain.Job{}, j7.ID).Error, gorm.ErrRecordNotFound)

		var logs int64
		require.NoError(t, db.Model(&domain.TimeLog{}).Where("job_id = ?", j7.ID).Count(&logs).Error)
		assert.Zero(t, logs)
	})

	t.Run("reaches assignments filed under another project", func(t *testing.T) {
		db, jobs, assignments, project := setup(t)
		other := testutil.CreateProject(t, db, 2002, "Vanilla")
		j7 := testutil.CreateJob(t, db, other, 7)
		j8 := testutil.CreateJob(t, db, project, 8)
		prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

		a, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j7.ID, j8.ID}, ProductionID: &prod.ID})
		require.NoError(t, err)

		require.NoError(t, jobs.Delete(ctx, j7.ID))

		assert.Equal(t, domain.JobIDs{j8.ID}, loadAssignment(t, db, a.ID).JobIDs)
		assert.ErrorIs(t, db.First(&domain.Job{}, j7.ID).Error, gorm.ErrRecordNotFound)
	})

	t.Run("rolls back when the job delete fails", func(t *testing.T) {
		db, jobs, assignments, project := setup(t)
		j7 := testutil.CreateJob(t, db, project, 7)
		j8 := testutil.CreateJob(t, db, project, 8)
		prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

		a, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j7.ID, j8.ID}, ProductionID: &prod.ID})
		require.NoError(t, err)

		boom := errors.New("disk full")
		require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_job_delete", func(tx *gorm.DB) {
			if tx.Statement.Table == "jobs" {
				_ = tx.AddError(boom)
			}
		}))

		err = jobs.Delete(ctx, j7.ID)
		require.ErrorIs(t, err, boom)

		assert.Equal(t, domain.JobIDs{j7.ID, j8.ID}, loadAssignment(t, db, a.ID).JobIDs)
		loadJob(t, db, j7.ID)
	})

	t.Run("unknown job", func(t *testing.T) {
		_, jobs, _, _ := setup(t)
		assert.ErrorIs(t, jobs.Delete(ctx, 12345), service.ErrJobNotFound)
	})
}
