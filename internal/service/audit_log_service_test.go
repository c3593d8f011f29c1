package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditLogService_Log(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: 7, Role: domain.RoleAdmin})

	entityID := int64(42)
	require.NoError(t, svc.Log(ctx, service.LogEntry{
		Action:     domain.AuditActionUpdate,
		EntityType: "User",
		EntityID:   &entityID,
		Method:     "PUT",
		Path:       "/api/users/42",
		StatusCode: 200,
		Body:       []byte(`{"first_name":"Ada","password":"s3cret"}`),
		RequestID:  "req-1",
	}))

	var stored domain.AuditLog
	require.NoError(t, db.First(&stored).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, int64(7), *stored.UserID)
	assert.Equal(t, domain.RoleAdmin, stored.UserRole)
	assert.JSONEq(t, `{"first_name":"Ada"}`, stored.Payload)
	assert.False(t, stored.PerformedAt.IsZero())

	t.Run("anonymous and non-object bodies", func(t *testing.T) {
		require.NoError(t, svc.Log(context.Background(), service.LogEntry{
			Action:     domain.AuditActionDelete,
			EntityType: "Brand",
			Method:     "DELETE",
			Path:       "/api/brand/bulk-delete",
			StatusCode: 200,
			Body:       []byte(`[1,2,3]`),
		}))
		var row domain.AuditLog
		require.NoError(t, db.Where("entity_type = ?", "Brand").First(&row).Error)
		assert.Nil(t, row.UserID)
		assert.Equal(t, "[1,2,3]", row.Payload)
	})
}

func TestAuditLogService_ListAndPurge(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	ctx := context.Background()

	now := time.Now().UTC()
	for i, age := range []time.Duration{0, time.Hour, 400 * 24 * time.Hour} {
		action := domain.AuditActionCreate
		if i == 1 {
			action = domain.AuditActionDelete
		}
		require.NoError(t, db.Create(&domain.AuditLog{
			Action:      action,
			EntityType:  "Invoice",
			Method:      "POST",
			Path:        "/api/invoices",
			StatusCode:  201,
			PerformedAt: now.Add(-age),
		}).Error)
	}

	page, err := svc.List(ctx, service.AuditLogQuery{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.True(t, page.Data[0].PerformedAt.After(page.Data[1].PerformedAt))

	deleteAction := domain.AuditActionDelete
	q := service.AuditLogQuery{}
	q.Action = &deleteAction
	page, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.PageSize)

	n, err := svc.Purge(ctx, 365*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	page, err = svc.List(ctx, service.AuditLogQuery{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 100, page.PageSize)
}
