// Package testutil provides in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/database"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory sqlite database private to t
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes transactions the way a row lock would.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateProject inserts a project with the given number
func CreateProject(t *testing.T, db *gorm.DB, no int64, name string) *domain.Project {
	t.Helper()
	p := &domain.Project{ProjectNo: no, ProjectName: name, Priority: "medium", Status: "active", Currency: "USD"}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateJob inserts an unassigned job in project
func CreateJob(t *testing.T, db *gorm.DB, project *domain.Project, no int64) *domain.Job {
	t.Helper()
	j := &domain.Job{
		JobNo:       no,
		ProjectID:   project.ID,
		ProjectName: project.ProjectName,
		Priority:    "medium",
		JobStatus:   domain.JobActive,
		Assigned:    domain.Unassigned,
	}
	require.NoError(t, db.Create(j).Error)
	return j
}

// CreateUser inserts a user with role
func CreateUser(t *testing.T, db *gorm.DB, first, last, role string) *domain.User {
	t.Helper()
	u := &domain.User{
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(first+"."+last) + "@example.com",
		Password:  "x",
		RoleName:  role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateClient inserts a client
func CreateClient(t *testing.T, db *gorm.DB, name string) *domain.ClientSupplier {
	t.Helper()
	c := &domain.ClientSupplier{Type: "client", Name: name, Status: "active", Address: "Dubai", Phone: "+971"}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
