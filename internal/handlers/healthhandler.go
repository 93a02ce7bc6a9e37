package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/database"
	"github.com/justsurfingit/job-trends-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB     *gorm.DB
	Jobs   *services.JobService
	Logger *zap.Logger
}

func NewHealthHandler(db *gorm.DB, jobs *services.JobService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{DB: db, Jobs: jobs, Logger: logger}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Job Trends API"})
}

// Health always answers 200; the body says whether the store is reachable.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	err := database.Ping(ctx, h.DB)
	var total int64
	if err == nil {
		total, err = h.Jobs.CountJobs(ctx)
	}
	if err != nil {
		h.Logger.Warn("health check degraded", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"status":   "degraded",
			"database": "unreachable",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
		"jobs":     total,
	})
}
