package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-trends-api/internal/services"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
	Logger    *zap.Logger
}

func NewAnalyticsHandler(a *services.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: a, Logger: logger}
}

// Summary is GET /analytics/summary. Dashboards always get a well-formed
// body, so failures degrade to an empty summary.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.Analytics.Summary(c.Request.Context())
	if err != nil {
		h.Logger.Error("analytics summary failed, serving empty summary", zap.Error(err))
		summary = services.EmptySummary()
	}
	c.JSON(http.StatusOK, summary)
}

// AggregateByDimension is GET /jobs/agg/:dimension. Like the column
// inspection route it is a debugging aid, so failures carry the stack.
func (h *AnalyticsHandler) AggregateByDimension(c *gin.Context) {
	out, err := h.Analytics.AggregateByDimension(c.Request.Context(), c.Param("dimension"))
	if err != nil {
		respondErrorWithTrace(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// JobColumns is GET /debug/job_columns
func (h *AnalyticsHandler) JobColumns(c *gin.Context) {
	report, err := h.Analytics.JobColumns(c.Request.Context())
	if err != nil {
		respondErrorWithTrace(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
