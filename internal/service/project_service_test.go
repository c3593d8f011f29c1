package service_test

import (
	"context"
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

func createProjectService(t *testing.T, db *gorm.DB) *service.ProjectService {
	t.Helper()
	return service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewJobRepository(db),
		repository.NewAssignJobRepository(db),
		repository.NewTimeLogRepository(db),
		repository.NewEstimateRepository(db),
		repository.NewPurchaseOrderRepository(db),
		repository.NewInvoiceRepository(db),
		createNumberService(db),
		zap.NewNop(),
		db,
	)
}

func createDashboardService(t *testing.T, db *gorm.DB) *service.DashboardService {
	t.Helper()
	return service.NewDashboardService(
		repository.NewProjectRepository(db),
		repository.NewJobRepository(db),
		repository.NewAssignJobRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewPurchaseOrderRepository(db),
		repository.NewTimeLogRepository(db),
		zap.NewNop(),
	)
}

func TestProjectService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createProjectService(t, db)
	ctx := context.Background()

	p, err := svc.Create(ctx, &domain.ProjectRequest{
		ProjectName: "  Summer range ",
		Budget:      "12,500.50",
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2094), p.ProjectNo)
	assert.Equal(t, "Summer range", p.ProjectName)
	assert.Equal(t, "medium", p.Priority)
	assert.Equal(t, "active", p.Status)
	require.NotNil(t, p.Budget)
	assert.InDelta(t, 12500.50, *p.Budget, 0.001)

	t.Run("numeric budget", func(t *testing.T) {
		p, err := svc.Create(ctx, &domain.ProjectRequest{ProjectName: "Winter", Budget: 300.0, Currency: "USD"})
		require.NoError(t, err)
		require.NotNil(t, p.Budget)
		assert.InDelta(t, 300.0, *p.Budget, 0.001)
	})

	t.Run("bad budget", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.ProjectRequest{ProjectName: "Broken", Budget: "abc", Currency: "USD"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.ProjectRequest{ProjectName: " "})
		assert.ErrorIs(t, err, service.ErrProjectNameRequired)
	})
}

func TestProjectService_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createProjectService(t, db)
	assignments := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 4001, "Sauces")
	keep := testutil.CreateProject(t, db, 4002, "Dressings")
	j := testutil.CreateJob(t, db, project, 1)
	kept := testutil.CreateJob(t, db, keep, 2)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	_, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.TimeLog{JobID: j.ID, ProjectID: project.ID}).Error)

	require.NoError(t, svc.Delete(ctx, project.ID))

	count := func(model any, where string, args ...any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&domain.Project{}, "id = ?", project.ID))
	assert.Zero(t, count(&domain.Job{}, "project_id = ?", project.ID))
	assert.Zero(t, count(&domain.AssignJob{}, "project_id = ?", project.ID))
	assert.Zero(t, count(&domain.TimeLog{}, "project_id = ?", project.ID))
	assert.Equal(t, int64(1), count(&domain.Job{}, "id = ?", kept.ID))

	assert.ErrorIs(t, svc.Delete(ctx, project.ID), service.ErrProjectNotFound)
}

func TestDashboardService_Production(t *testing.T) {
	db := testutil.NewTestDB(t)
	dashboards := createDashboardService(t, db)
	assignments := createAssignmentService(t, db, nil)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 5001, "Pasta")
	j1 := testutil.CreateJob(t, db, project, 1)
	j2 := testutil.CreateJob(t, db, project, 2)
	testutil.CreateJob(t, db, project, 3)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")
	idle := testutil.CreateUser(t, db, "Ida", "Idle", "production")

	a, err := assignments.Assign(ctx, &domain.AssignJobRequest{ProjectID: &project.ID, JobIDs: []int64{j1.ID, j2.ID}, ProductionID: &prod.ID})
	require.NoError(t, err)
	_, err = assignments.ProductionComplete(ctx, a.ID)
	require.NoError(t, err)

	d, err := dashboards.Production(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TopCards.Completed)
	assert.Zero(t, d.TopCards.InProgress)
	assert.Equal(t, int64(1), d.TopCards.PendingAssignment)
	assert.Equal(t, int64(2), d.WeeklyPerformance.JobsCompleted)
	assert.Zero(t, d.EmployeeWorkload.TotalJobsAssigned)

	t.Run("user without assignments", func(t *testing.T) {
		d, err := dashboards.Production(ctx, idle.ID)
		require.NoError(t, err)
		assert.Zero(t, d.TopCards.Completed)
		assert.Zero(t, d.EmployeeWorkload.TotalJobsAssigned)
	})
}

func TestDashboardService_AdminReport(t *testing.T) {
	db := testutil.NewTestDB(t)
	dashboards := createDashboardService(t, db)
	ctx := context.Background()

	project := testutil.CreateProject(t, db, 5101, "Rice")
	testutil.CreateJob(t, db, project, 1)
	testutil.CreateJob(t, db, project, 2)
	client := testutil.CreateClient(t, db, "Grain Co")
	require.NoError(t, db.Create(&domain.Invoice{InvoiceNo: 1, ClientID: client.ID, Currency: "USD", PaymentStatus: domain.PaymentPaid, TotalAmount: 100}).Error)
	require.NoError(t, db.Create(&domain.Invoice{InvoiceNo: 2, ClientID: client.ID, Currency: "EUR", PaymentStatus: domain.PaymentUnpaid, TotalAmount: 40}).Error)

	r, err := dashboards.AdminReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.TopCards.TotalJobs)
	assert.Equal(t, int64(2), r.TopCards.ActiveJobs)
	assert.Equal(t, int64(1), r.TopCards.TotalProjects)
	assert.Len(t, r.TopCards.InvoiceAmountByCurrency, 2)
	assert.InDelta(t, 100.0, r.Finance.PaidAmount, 0.001)
	assert.InDelta(t, 40.0, r.Finance.UnpaidAmount, 0.001)
}
