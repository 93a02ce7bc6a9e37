package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/cache"
	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/database"
	"github.com/justsurfingit/job-trends-api/internal/database/dbtest"
	"github.com/justsurfingit/job-trends-api/internal/events"
	"github.com/justsurfingit/job-trends-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLLM(t, nil)
}

// newTestServerWithLLM enables extraction backed by model; nil disables it.
func newTestServerWithLLM(t *testing.T, model llms.Model) *testServer {
	t.Helper()
	db := dbtest.New(t)
	logger := zap.NewNop()
	cfg := &config.Config{
		DefaultWorkYear:    2025,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
	}

	jobs := services.NewJobService(db, events.NewNoopPublisher(), cache.Noop{}, logger, cfg)
	analytics := services.NewAnalyticsService(db, cache.Noop{}, logger, cfg)
	llm := &services.LLMService{Client: model, Logger: logger}

	router := NewRouter(cfg, logger,
		NewJobHandler(jobs, llm, services.NewMatcherService(db), logger),
		NewAnalyticsHandler(analytics, logger),
		NewHealthHandler(db, jobs, logger),
	)
	return &testServer{db: db, router: router}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createJob(t *testing.T, body string) map[string]any {
	t.Helper()
	w := s.do(t, http.MethodPost, "/jobs", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job Trends API", decode[map[string]any](t, w)["message"])
}

func TestCreateAndGetJob(t *testing.T) {
	s := newTestServer(t)
	created := s.createJob(t, `{
		"job_title": "Data Engineer",
		"location": "Berlin",
		"min_salary": 60000,
		"max_salary": 90000,
		"company_name": "Acme",
		"skills": ["Python", "SQL"]
	}`)

	assert.Equal(t, "Data Engineer", created["job_title"])
	assert.Equal(t, created["job_title"], created["title"])
	assert.Equal(t, created["job_id"], created["id"])
	assert.Equal(t, "Acme", created["company_name"])
	assert.Equal(t, float64(2025), created["work_year"])
	assert.Equal(t, []any{"Python", "SQL"}, created["skill_names"])

	w := s.do(t, http.MethodGet, "/jobs/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[map[string]any](t, w))
}

func TestCreateJob_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"job_title": `},
		{"missing title", `{"location": "Berlin"}`},
		{"blank title", `{"job_title": "   ", "location": "Berlin"}`},
		{"missing location", `{"job_title": "Engineer"}`},
		{"negative salary", `{"job_title": "E", "location": "L", "min_salary": -1}`},
		{"inverted salary", `{"job_title": "E", "location": "L", "min_salary": 10, "max_salary": 5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "VALIDATION", decode[map[string]any](t, w)["type"])
		})
	}
}

func TestGetJob_BadAndMissingIDs(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/jobs/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/jobs/0", "").Code)

	w := s.do(t, http.MethodGet, "/jobs/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Job 999 not found", body["error"])
	assert.Equal(t, "NOT_FOUND", body["type"])
}

func TestListJobs(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "Data Engineer", "location": "Berlin"}`)
	s.createJob(t, `{"job_title": "Designer", "location": "Remote"}`)
	s.createJob(t, `{"job_title": "Data Analyst", "location": "Paris"}`)

	w := s.do(t, http.MethodGet, "/jobs?search=data", "")
	require.Equal(t, http.StatusOK, w.Code)
	jobs := decode[[]map[string]any](t, w)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Data Engineer", jobs[0]["job_title"])
	assert.Equal(t, "Data Analyst", jobs[1]["job_title"])

	w = s.do(t, http.MethodGet, "/jobs?skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	jobs = decode[[]map[string]any](t, w)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Designer", jobs[0]["job_title"])

	for _, q := range []string{"limit=0", "limit=10001", "skip=-1", "limit=abc"} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/jobs?"+q, "").Code, q)
	}
}

func TestCountJobs(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "A", "location": "B"}`)

	w := s.do(t, http.MethodGet, "/jobs/count", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["total_jobs"])
}

func TestUpdateJob(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "A", "location": "Berlin", "skills": ["x", "y"]}`)

	w := s.do(t, http.MethodPut, "/jobs/1", `{"job_title": "B", "skills": ["y", "z"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "B", body["job_title"])
	assert.Equal(t, "Berlin", body["location"])
	assert.Equal(t, []any{"y", "z"}, body["skill_names"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/jobs/42", `{"job_title": "C"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/jobs/1", `{"job_title": ""}`).Code)

	w = s.do(t, http.MethodPut, "/jobs/1", `{"location": "  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decode[map[string]any](t, w)["type"])
	w = s.do(t, http.MethodGet, "/jobs/1", "")
	assert.Equal(t, "Berlin", decode[map[string]any](t, w)["location"])
}

func TestDeleteJob(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "A", "location": "B", "skills": ["x"]}`)

	w := s.do(t, http.MethodDelete, "/jobs/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), body["job_id"])
	assert.NotEmpty(t, body["message"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/jobs/1", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/jobs/1", "").Code)
}

func TestAggregateByDimension(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "A", "location": "Berlin"}`)
	s.createJob(t, `{"job_title": "B", "location": "Berlin"}`)

	w := s.do(t, http.MethodGet, "/jobs/agg/location", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"label": "Berlin", "count": 2}]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/jobs/agg/salary_bucket", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "SCHEMA_MISMATCH", body["type"])
	assert.Equal(t, []any{"salary_bucket"}, body["tried_candidates"])
	assert.Contains(t, body["available_columns"], "location")
}

func TestAggregateByDimension_FailureIncludesTrace(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, database.Close(s.db))

	w := s.do(t, http.MethodGet, "/jobs/agg/location", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "STORE_UNAVAILABLE", body["type"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["trace"])
}

func TestAnalyticsSummary(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/analytics/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_jobs": 0,
		"average_min_salary": 0,
		"top_skills": [],
		"salary_trend": [],
		"work_setting_distribution": [],
		"company_size_distribution": []
	}`, w.Body.String())
}

func TestAnalyticsSummary_DegradesToEmpty(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, database.Close(s.db))

	w := s.do(t, http.MethodGet, "/analytics/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, w)["total_jobs"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, float64(0), body["jobs"])

	require.NoError(t, database.Close(s.db))
	w = s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[map[string]any](t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["database"])
	assert.NotEmpty(t, body["error"])
}

func TestJobColumns(t *testing.T) {
	s := newTestServer(t)
	s.createJob(t, `{"job_title": "A", "location": "B"}`)

	w := s.do(t, http.MethodGet, "/debug/job_columns", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["columns"], "work_setting")
	require.IsType(t, map[string]any{}, body["sample_row"])
	assert.Equal(t, "A", body["sample_row"].(map[string]any)["title"])
}

func TestJobColumns_FailureIncludesTrace(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, database.Close(s.db))

	w := s.do(t, http.MethodGet, "/debug/job_columns", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "STORE_UNAVAILABLE", body["type"])
	assert.NotEmpty(t, body["error"])
	assert.NotEmpty(t, body["trace"])
}

func TestExtractJob_Disabled(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/jobs/extract", `{"raw_text": "Hiring a Go developer"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "UNAVAILABLE", decode[map[string]any](t, w)["type"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/jobs/extract", `{}`).Code)
}

type cannedModel struct {
	reply string
}

func (m cannedModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m cannedModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func TestExtractJob_MatchesTrackedCompany(t *testing.T) {
	s := newTestServerWithLLM(t, cannedModel{
		reply: `{"job_title": "Backend Engineer", "location": "Remote", "company_name": "Stripe, Inc.", "skills": ["Go"]}`,
	})
	s.createJob(t, `{"job_title": "Existing", "location": "Dublin", "company_name": "Stripe"}`)

	w := s.do(t, http.MethodPost, "/jobs/extract", `{"raw_text": "Stripe is hiring", "url": "https://stripe.com/jobs/1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Backend Engineer", data["job_title"])
	assert.Equal(t, "Stripe", data["company_name"])
	assert.Equal(t, map[string]any{"company_id": float64(1), "company_name": "Stripe"}, body["matched_company"])

	// nothing is persisted by extraction
	w = s.do(t, http.MethodGet, "/jobs/count", "")
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["total_jobs"])
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
