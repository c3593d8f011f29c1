package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/http/handler"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role string) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

func newAssignmentRouter(t *testing.T, db *gorm.DB) http.Handler {
	t.Helper()
	svc := service.NewAssignmentService(
		repository.NewAssignJobRepository(db),
		repository.NewJobRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		nil, nil, zap.NewNop(), db,
	)
	h := handler.NewAssignmentHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/assignjobs", h.Assign)
	r.Put("/assignjobs/production-complete/{id}", h.ProductionComplete)
	r.Put("/assignjobs/production-return", h.ProductionReturn)
	r.Put("/assignjobs/production-reject", h.ProductionReject)
	r.Put("/assignjobs/employee-complete/{assign_job_id}/{job_id}", h.EmployeeComplete)
	r.Get("/assignjobs/production/{production_id}", h.ListByProduction)
	r.Get("/assignjobs/jobs/in-progress/{production_id}", h.JobsByStatus(domain.ProductionInProgress, "production_id"))
	r.Delete("/assignjobs/{id}", h.Delete)
	return r
}

func TestAssignmentHandler(t *testing.T) {
	db := testutil.NewTestDB(t)
	r := newAssignmentRouter(t, db)

	project := testutil.CreateProject(t, db, 1001, "Juice")
	j1 := testutil.CreateJob(t, db, project, 10)
	j2 := testutil.CreateJob(t, db, project, 11)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	rr, body := doRequest(t, r, http.MethodPost, "/assignjobs", map[string]any{
		"project_id":    project.ID,
		"job_ids":       []int64{j1.ID, j2.ID},
		"production_id": prod.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Job assigned successfully & jobs updated", body["message"])

	var a domain.AssignJob
	require.NoError(t, db.First(&a).Error)

	t.Run("list by production", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodGet, fmt.Sprintf("/assignjobs/production/%d", prod.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		data, ok := body["data"].([]any)
		require.True(t, ok)
		assert.Len(t, data, 1)
	})

	t.Run("jobs in progress carry a count", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodGet, fmt.Sprintf("/assignjobs/jobs/in-progress/%d", prod.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.EqualValues(t, 2, body["count"])
	})

	t.Run("missing assignee is a 400", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPost, "/assignjobs", map[string]any{
			"project_id": project.ID,
			"job_ids":    []int64{j1.ID},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("job outside the assignment is a 400", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/assignjobs/employee-complete/%d/%d", a.ID, 9999), nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("production complete", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPut, fmt.Sprintf("/assignjobs/production-complete/%d", a.ID), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Production completed successfully", body["message"])

		var job domain.Job
		require.NoError(t, db.First(&job, j1.ID).Error)
		assert.Equal(t, domain.JobComplete, job.JobStatus)
	})

	t.Run("unknown assignment is a 404", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPut, "/assignjobs/production-complete/4242", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Assign job not found", body["message"])
	})

	t.Run("empty reject batch is a 400", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodPut, "/assignjobs/production-reject", map[string]any{"ids": []int64{}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodPut, "/assignjobs/production-complete/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/assignjobs/%d", a.ID), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		rr, _ = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/assignjobs/%d", a.ID), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAssignmentHandler_ProductionBatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	r := newAssignmentRouter(t, db)

	project := testutil.CreateProject(t, db, 1002, "Cola")
	j1 := testutil.CreateJob(t, db, project, 20)
	j2 := testutil.CreateJob(t, db, project, 21)
	prod := testutil.CreateUser(t, db, "Pia", "Prod", "production")

	assign := func(jobID int64) int64 {
		rr, _ := doRequest(t, r, http.MethodPost, "/assignjobs", map[string]any{
			"project_id":    project.ID,
			"job_ids":       []int64{jobID},
			"production_id": prod.ID,
		})
		require.Equal(t, http.StatusCreated, rr.Code)
		var a domain.AssignJob
		require.NoError(t, db.Order("id DESC").First(&a).Error)
		return a.ID
	}

	t.Run("reject reads ids", func(t *testing.T) {
		id := assign(j1.ID)
		rr, body := doRequest(t, r, http.MethodPut, "/assignjobs/production-reject", map[string]any{"ids": []int64{id}})
		require.Equal(t, http.StatusOK, rr.Code, body)
		assert.Equal(t, "Production rejected successfully", body["message"])

		var job domain.Job
		require.NoError(t, db.First(&job, j1.ID).Error)
		assert.Equal(t, domain.JobReject, job.JobStatus)
		assert.Equal(t, domain.Unassigned, job.Assigned)
	})

	t.Run("return accepts assign_job_ids", func(t *testing.T) {
		id := assign(j2.ID)
		rr, body := doRequest(t, r, http.MethodPut, "/assignjobs/production-return", map[string]any{"assign_job_ids": []int64{id}})
		require.Equal(t, http.StatusOK, rr.Code, body)

		var job domain.Job
		require.NoError(t, db.First(&job, j2.ID).Error)
		assert.Equal(t, domain.JobComplete, job.JobStatus)
	})

	t.Run("missing ids", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPut, "/assignjobs/production-reject", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No assign job ids provided", body["message"])
	})
}

func TestAuthHandler_Login(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := service.NewUserService(repository.NewUserRepository(db), stubIssuer{}, nil, bcrypt.MinCost, zap.NewNop())
	h := handler.NewAuthHandler(users, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)

	_, err := users.Create(context.Background(), &domain.UserRequest{
		FirstName: "Ada", LastName: "Admin", Email: "ada@example.com", Password: "s3cret", RoleName: "admin",
	}, nil)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPost, "/auth/login", map[string]string{"email": "ada@example.com", "password": "s3cret"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "admin login successful", body["message"])
		assert.Equal(t, "admin", body["role"])
		assert.NotEmpty(t, body["token"])

		data := body["data"].(map[string]any)
		assert.Equal(t, "ada@example.com", data["email"])
		_, leaked := data["password"]
		assert.False(t, leaked)
	})

	t.Run("wrong password is a 403", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPost, "/auth/login", map[string]string{"email": "ada@example.com", "password": "nope"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Invalid password", body["message"])
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com", "password": "x"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		errs := body["errors"].(map[string]any)
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCatalogHandler(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewCatalogService(repository.NewCatalogRepository(db), zap.NewNop())
	h := handler.NewCatalogHandler(svc, domain.CatalogPackType, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/packtypes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Delete("/bulk-delete", h.BulkDelete)
		r.Delete("/{id}", h.Delete)
	})

	var ids []int64
	for _, name := range []string{"Pouch", "Can", "Bottle"} {
		rr, body := doRequest(t, r, http.MethodPost, "/packtypes/", map[string]string{"name": name})
		require.Equal(t, http.StatusOK, rr.Code)
		ids = append(ids, int64(body["id"].(float64)))
	}

	rr, body := doRequest(t, r, http.MethodGet, "/packtypes/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, body["data"], 3)

	t.Run("name is required", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodPost, "/packtypes/", map[string]string{"name": ""})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bulk delete", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodDelete, "/packtypes/bulk-delete", map[string]any{"ids": ids[:2]})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.EqualValues(t, 2, body["deletedCount"])
		assert.Contains(t, body["message"], "deleted successfully")
	})

	t.Run("bulk delete without ids", func(t *testing.T) {
		rr, body := doRequest(t, r, http.MethodDelete, "/packtypes/bulk-delete", map[string]any{"ids": []int64{}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "ids array is required", body["message"])
	})

	t.Run("delete one", func(t *testing.T) {
		rr, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/packtypes/%d", ids[2]), nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		_, body := doRequest(t, r, http.MethodGet, "/packtypes/", nil)
		assert.Empty(t, body["data"])
	})
}
