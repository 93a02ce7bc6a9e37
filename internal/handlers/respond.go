package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/justsurfingit/job-trends-api/internal/errors"
	"go.uber.org/zap"
)

// respondError renders err as {error, type} plus any structured details the
// error carries. Server-side failures are logged with their stack.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	renderError(c, logger, err, false)
}

// respondErrorWithTrace is respondError for debug routes, which also expose
// the captured stack in the body.
func respondErrorWithTrace(c *gin.Context, logger *zap.Logger, err error) {
	renderError(c, logger, err, true)
}

func renderError(c *gin.Context, logger *zap.Logger, err error, withTrace bool) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{
		"error": "Internal server error",
		"type":  apperrors.TypeOf(err),
	}

	var de *apperrors.DomainError
	if errors.As(err, &de) {
		body["error"] = de.Message
		for k, v := range de.Details {
			body[k] = v
		}
	}

	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		}
		if de != nil {
			fields = append(fields, zap.ByteString("stack", de.StackTrace()))
			if de.Err != nil {
				body["detail"] = de.Err.Error()
			}
		}
		logger.Error("request failed", fields...)
	}
	if withTrace && de != nil {
		body["trace"] = string(de.StackTrace())
	}

	c.AbortWithStatusJSON(status, body)
}

func bindError(c *gin.Context, logger *zap.Logger, err error) {
	respondError(c, logger, apperrors.Validation("Invalid request: "+err.Error(), err))
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid "+name+": "+raw, err)
	}
	return uint(id), nil
}
