package domain

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/jobs"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// BaseHandler carries what every handler package needs: a logger and the
// error-to-response mapping. Handlers embed it instead of repeating the
// taxonomy switch.
type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// RespondError turns a taxonomy error into the matching JSON response.
// Validation details are surfaced verbatim; everything unrecognized is a
// logged 500 with a generic body.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	if vErr, ok := models.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": vErr.Detail})
		return
	}

	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "Not allowed"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": "Conflict"})
	case errors.Is(err, models.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Bad request"})
	case errors.Is(err, models.ErrPollTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "The operation is still running. Try again later."})
	case errors.Is(err, models.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Service temporarily unavailable"})
	default:
		h.Logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
	}
}

// RespondJob maps a finished polling run onto a response. Success and
// needs-review carry the last job snapshot; failures go through the error
// mapping so validation details survive verbatim.
func (h *BaseHandler) RespondJob(c *gin.Context, res jobs.Result) {
	switch res.State {
	case jobs.StateSucceeded:
		c.JSON(http.StatusOK, gin.H{"state": res.State.String(), "job": res.Job})
	case jobs.StateNeedsReview:
		c.JSON(http.StatusAccepted, gin.H{"state": res.State.String(), "job": res.Job})
	case jobs.StateFailed:
		if res.Err != nil {
			h.RespondError(c, res.Err)
			return
		}
		detail := "The operation failed."
		if res.Job != nil && res.Job.Detail != "" {
			detail = res.Job.Detail
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"state": res.State.String(), "detail": detail, "job": res.Job})
	case jobs.StateTimedOut:
		h.RespondError(c, res.Err)
	default:
		h.Logger.Error("Polling run ended in a non-terminal state", zap.String("state", res.State.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
	}
}
