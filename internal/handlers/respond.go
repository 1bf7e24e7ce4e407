package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/logger"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is treated as an internal failure and hidden behind
// the fallback message.
func respondError(ctx *gin.Context, err error, fallback string) {
	switch {
	case apperrors.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsAuthorization(err):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case apperrors.IsConflict(err):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Log.Errorw("request failed", "path", ctx.FullPath(), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseDate accepts an ISO-8601 timestamp or a bare date. Deadlines are
// not range-checked here; rejecting past dates is the client's rule.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", value)

	if err != nil {
		return nil, err
	}

	return &t, nil
}
