package service_test

import (
	"context"
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

type financialServices struct {
	estimates *service.EstimateService
	invoices  *service.InvoiceService
	pos       *service.PurchaseOrderService
	sync      *service.FinancialSyncService
	events    *events.Recorder
}

func createFinancialServices(t *testing.T, db *gorm.DB) financialServices {
	t.Helper()
	logger := zap.NewNop()

	estimateRepo := repository.NewEstimateRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	clientRepo := repository.NewClientSupplierRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)

	rec := &events.Recorder{}
	sync := service.NewFinancialSyncService(estimateRepo, poRepo, invoiceRepo, rec, nil, logger)
	return financialServices{
		estimates: service.NewEstimateService(estimateRepo, poRepo, clientRepo, projectRepo, companyRepo, numbers, sync, logger, db),
		invoices:  service.NewInvoiceService(invoiceRepo, estimateRepo, poRepo, clientRepo, projectRepo, companyRepo, numbers, sync, logger, db),
		pos:       service.NewPurchaseOrderService(poRepo, estimateRepo, clientRepo, projectRepo, nil, logger, db),
		sync:      sync,
		events:    rec,
	}
}

func lineItems(qty, rate float64) []domain.LineItemInput {
	return []domain.LineItemInput{{Description: "Artwork adaptation", Quantity: qty, Rate: rate}}
}

func loadEstimate(t *testing.T, db *gorm.DB, id int64) domain.Estimate {
	t.Helper()
	var e domain.Estimate
	require.NoError(t, db.First(&e, id).Error)
	return e
}

func loadPurchaseOrder(t *testing.T, db *gorm.DB, id int64) domain.PurchaseOrder {
	t.Helper()
	var po domain.PurchaseOrder
	require.NoError(t, db.First(&po, id).Error)
	return po
}

// seedEstimateWithPO creates an estimate of 2 x 100 at 5% VAT and a PO
// raised against it
func seedEstimateWithPO(t *testing.T, db *gorm.DB, svc financialServices) (*domain.Estimate, *domain.PurchaseOrder) {
	t.Helper()
	ctx := context.Background()
	client := testutil.CreateClient(t, db, "Fresh Foods LLC")
	project := testutil.CreateProject(t, db, 3001, "Yoghurt cups")

	est, err := svc.estimates.Create(ctx, &domain.EstimateRequest{
		ClientID:     &client.ID,
		ProjectID:    &project.ID,
		EstimateDate: domain.NewDate(time.Now()),
		Currency:     "USD",
		VATRate:      5,
		LineItems:    lineItems(2, 100),
	})
	require.NoError(t, err)

	po, err := svc.pos.Create(ctx, &domain.PurchaseOrderRequest{
		PONumber:         "PO-77",
		ProjectID:        &project.ID,
		ClientID:         &client.ID,
		CostEstimationID: &est.ID,
		POAmount:         "210.00",
		PODate:           domain.NewDate(time.Now()),
	}, nil)
	require.NoError(t, err)
	return est, po
}

func TestEstimateService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createFinancialServices(t, db)
	ctx := context.Background()
	client := testutil.CreateClient(t, db, "Fresh Foods LLC")

	est, err := svc.estimates.Create(ctx, &domain.EstimateRequest{
		ClientID:     &client.ID,
		EstimateDate: domain.NewDate(time.Now()),
		Currency:     "USD",
		VATRate:      5,
		LineItems:    lineItems(2, 100),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6608), est.EstimateNo)
	assert.InDelta(t, 200.0, est.Subtotal, 0.001)
	assert.InDelta(t, 10.0, est.VATAmount, 0.001)
	assert.InDelta(t, 210.0, est.TotalAmount, 0.001)
	assert.Equal(t, domain.EstimateStatusDraft, est.CEStatus)
	assert.Equal(t, domain.DocPending, est.CEPOStatus)

	next, err := svc.estimates.Create(ctx, &domain.EstimateRequest{
		ClientID:     &client.ID,
		EstimateDate: domain.NewDate(time.Now()),
		Currency:     "USD",
		LineItems:    lineItems(1, 50),
	})
	require.NoError(t, err)
	assert.Equal(t, est.EstimateNo+1, next.EstimateNo)

	t.Run("line items required", func(t *testing.T) {
		_, err := svc.estimates.Create(ctx, &domain.EstimateRequest{
			ClientID:     &client.ID,
			EstimateDate: domain.NewDate(time.Now()),
			Currency:     "USD",
		})
		assert.ErrorIs(t, err, service.ErrLineItemsRequired)
	})

	t.Run("client required", func(t *testing.T) {
		_, err := svc.estimates.Create(ctx, &domain.EstimateRequest{
			EstimateDate: domain.NewDate(time.Now()),
			Currency:     "USD",
			LineItems:    lineItems(1, 50),
		})
		assert.ErrorIs(t, err, service.ErrRequiredFieldsMissing)
	})
}

func TestPurchaseOrderService_CreateAndDeleteUpdateEstimate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createFinancialServices(t, db)
	ctx := context.Background()

	est, po := seedEstimateWithPO(t, db, svc)
	assert.InDelta(t, 210.0, po.POAmount, 0.001)

	stored := loadEstimate(t, db, est.ID)
	assert.Equal(t, domain.DocReceived, stored.CEPOStatus)
	assert.Equal(t, 1, stored.ToBeInvoiced)

	require.NoError(t, svc.pos.Delete(ctx, po.ID))
	stored = loadEstimate(t, db, est.ID)
	assert.Equal(t, domain.DocPending, stored.CEPOStatus)
	assert.Equal(t, 0, stored.ToBeInvoiced)

	assert.ErrorIs(t, svc.pos.Delete(ctx, po.ID), service.ErrPurchaseOrderNotFound)
}

func TestInvoiceService_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createFinancialServices(t, db)
	ctx := context.Background()

	est, _ := seedEstimateWithPO(t, db, svc)

	inv, err := svc.invoices.CreateFromEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), inv.InvoiceNo)
	assert.InDelta(t, 210.0, inv.TotalAmount, 0.001)
	assert.True(t, inv.ToBePaid)

	stored := loadEstimate(t, db, est.ID)
	assert.Equal(t, domain.EstimateStatusCompleted, stored.CEStatus)
	assert.Equal(t, domain.DocReceived, stored.CEInvoiceStatus)
	assert.Equal(t, 1, stored.Invoiced)

	t.Run("second invoice for the same estimate is rejected", func(t *testing.T) {
		_, err := svc.invoices.Create(ctx, &domain.InvoiceRequest{
			ClientID:    &est.ClientID,
			EstimateID:  &est.ID,
			InvoiceDate: domain.NewDate(time.Now()),
			Currency:    "USD",
			LineItems:   lineItems(1, 10),
		})
		assert.ErrorIs(t, err, service.ErrDuplicateInvoice)
		assert.ErrorIs(t, err, domain.ErrConflict)

		var count int64
		require.NoError(t, db.Model(&domain.Invoice{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown estimate leaves no invoice behind", func(t *testing.T) {
		_, err := svc.invoices.Create(ctx, &domain.InvoiceRequest{
			ClientID:    &est.ClientID,
			EstimateID:  testutil.Int64(9999),
			InvoiceDate: domain.NewDate(time.Now()),
			Currency:    "USD",
			LineItems:   lineItems(1, 10),
		})
		assert.ErrorIs(t, err, service.ErrEstimateNotFound)

		var count int64
		require.NoError(t, db.Model(&domain.Invoice{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete reopens the estimate", func(t *testing.T) {
		require.NoError(t, svc.invoices.Delete(ctx, inv.ID))
		assert.Equal(t, domain.EstimateStatusActive, loadEstimate(t, db, est.ID).CEStatus)
	})
}

func TestInvoiceService_UpdatePushesTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createFinancialServices(t, db)
	ctx := context.Background()

	est, po := seedEstimateWithPO(t, db, svc)
	inv, err := svc.invoices.CreateFromEstimate(ctx, est.ID)
	require.NoError(t, err)

	updated, report, err := svc.invoices.Update(ctx, inv.ID, &domain.InvoiceRequest{
		Currency:      "USD",
		InvoiceStatus: domain.InvoiceStatusActive,
		PaymentStatus: domain.PaymentPaid,
		VATRate:       5,
		LineItems:     lineItems(3, 100),
	})
	require.NoError(t, err)
	assert.InDelta(t, 315.0, updated.TotalAmount, 0.001)
	assert.True(t, updated.Paid)
	assert.False(t, updated.ToBePaid)

	require.NotNil(t, report)
	assert.True(t, report.OK())
	assert.True(t, report.EstimateSynced)
	assert.Equal(t, []int64{po.ID}, report.PurchaseOrdersSynced)

	assert.InDelta(t, 315.0, loadPurchaseOrder(t, db, po.ID).POAmount, 0.001)
	stored := loadEstimate(t, db, est.ID)
	assert.InDelta(t, 315.0, stored.TotalAmount, 0.001)
	assert.InDelta(t, 300.0, stored.Subtotal, 0.001)

	assert.NotEmpty(t, svc.events.Events())
}

func TestEstimateService_UpdatePushesTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := createFinancialServices(t, db)
	ctx := context.Background()

	est, po := seedEstimateWithPO(t, db, svc)
	inv, err := svc.invoices.CreateFromEstimate(ctx, est.ID)
	require.NoError(t, err)

	_, report, err := svc.estimates.Update(ctx, est.ID, &domain.EstimateRequest{
		Currency:  "USD",
		VATRate:   0,
		LineItems: lineItems(4, 25),
	})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, []int64{inv.ID}, report.InvoicesSynced)

	assert.InDelta(t, 100.0, loadPurchaseOrder(t, db, po.ID).POAmount, 0.001)
	var stored domain.Invoice
	require.NoError(t, db.First(&stored, inv.ID).Error)
	assert.InDelta(t, 100.0, stored.TotalAmount, 0.001)

	t.Run("resync is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			report, err := svc.sync.Resync(ctx, est.ID)
			require.NoError(t, err)
			assert.True(t, report.OK())
		}
		assert.InDelta(t, 100.0, loadPurchaseOrder(t, db, po.ID).POAmount, 0.001)
	})

	t.Run("resync all", func(t *testing.T) {
		synced, failed, err := svc.sync.ResyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, synced)
		assert.Zero(t, failed)
	})
}
