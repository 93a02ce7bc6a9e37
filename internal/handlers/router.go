package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/config"
	"go.uber.org/zap"
)

// NewRouter wires middleware and the route table. Every route is defined
// exactly once here.
func NewRouter(cfg *config.Config, logger *zap.Logger, jobs *JobHandler, analytics *AnalyticsHandler, health *HealthHandler) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/", health.Root)
	r.GET("/health", health.Health)

	r.GET("/jobs", jobs.ListJobs)
	r.GET("/jobs/count", jobs.CountJobs)
	r.GET("/jobs/:id", jobs.GetJob)
	r.POST("/jobs", jobs.CreateJob)
	r.POST("/jobs/extract", jobs.ParseJob)
	r.PUT("/jobs/:id", jobs.UpdateJob)
	r.DELETE("/jobs/:id", jobs.DeleteJob)

	r.GET("/jobs/agg/:dimension", analytics.AggregateByDimension)
	r.GET("/analytics/summary", analytics.Summary)
	r.GET("/debug/job_columns", analytics.JobColumns)

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader}
	c.ExposeHeaders = []string{requestIDHeader}
	c.MaxAge = 12 * time.Hour

	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.CORSAllowedOrigins
	c.AllowCredentials = true
	return c
}
