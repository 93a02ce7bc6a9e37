package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/dtos"
	"github.com/justsurfingit/job-trends-api/internal/projection"
	"github.com/justsurfingit/job-trends-api/internal/services"
	"go.uber.org/zap"
)

// JobHandler serves the /jobs resource and posting extraction.
type JobHandler struct {
	JobService *services.JobService
	LLMService *services.LLMService
	Matcher    *services.MatcherService
	Logger     *zap.Logger
}

// NewJobHandler creates the handler with dependencies
func NewJobHandler(j *services.JobService, llm *services.LLMService, m *services.MatcherService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		JobService: j,
		LLMService: llm,
		Matcher:    m,
		Logger:     logger,
	}
}

// ListJobs is GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var q dtos.ListJobsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, h.Logger, err)
		return
	}

	jobs, err := h.JobService.ListJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, projection.ProjectAll(jobs))
}

// CountJobs is GET /jobs/count
func (h *JobHandler) CountJobs(c *gin.Context) {
	total, err := h.JobService.CountJobs(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_jobs": total})
}

// GetJob is GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	job, err := h.JobService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, projection.Project(job))
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.Logger, err)
		return
	}

	job, err := h.JobService.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, projection.Project(job))
}

// UpdateJob is PUT /jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	var req dtos.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.Logger, err)
		return
	}

	job, err := h.JobService.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, projection.Project(job))
}

// DeleteJob is DELETE /jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	if err := h.JobService.DeleteJob(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Job %d deleted", id),
		"job_id":  id,
	})
}

// ParseJob is the POST /jobs/extract endpoint. The draft it returns is not
// saved; clients review it and POST /jobs themselves. When the posting
// belongs to a tracked company the draft uses that company's name.
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.Logger, err)
		return
	}

	ctx := c.Request.Context()
	draft, err := h.LLMService.ExtractJobDetails(ctx, req.RawText)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	var matched *projection.CompanyView
	company, err := h.Matcher.MatchCompany(ctx, draft.CompanyName, req.URL)
	if err != nil {
		// the draft is still useful without a match
		h.Logger.Warn("company matching failed", zap.Error(err))
	} else if company != nil {
		draft.CompanyName = company.Name
		matched = &projection.CompanyView{ID: company.ID, Name: company.Name}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"data":            draft,
		"matched_company": matched,
	})
}
