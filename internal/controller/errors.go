package controller

import (
	"errors"
	"net/http"

	"github.com/academiapadel/backend/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are logged and hidden behind a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, model.ErrNoPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "no permission"})
	case errors.Is(err, model.ErrSlotTaken),
		errors.Is(err, model.ErrSlotUnavailable),
		errors.Is(err, model.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrDeadlinePassed),
		errors.Is(err, model.ErrDeadlineExpired),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInvalidTimeSlot),
		errors.Is(err, model.ErrLevelMismatch),
		errors.Is(err, model.ErrNotJoinable),
		errors.Is(err, model.ErrRegistrationClosed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
