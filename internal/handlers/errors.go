package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/errs"
)

// respondError maps service errors to HTTP responses. Invalid state
// transitions and persistence conflicts both map to 409 but carry distinct
// codes so clients can tell them apart.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, errs.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "INVALID_STATE_TRANSITION"})
	case errors.Is(err, errs.ErrPersistenceConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "PERSISTENCE_CONFLICT"})
	case errors.Is(err, errs.ErrSyncUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "SYNC_UNAVAILABLE"})
	case errors.Is(err, errs.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "CONFIGURATION_ERROR"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
