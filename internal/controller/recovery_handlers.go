package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /api/recoveries?student_id=
func (h *Handler) listRecoveries(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id is required"})
		return
	}

	student, err := h.users.StudentForUser(c.Request.Context(), studentID, uid(c), callerCaps(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	slots, err := h.recoveries.ListEligibleSlots(c.Request.Context(), student, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	owned, err := h.recoveries.OwnedAvailable(c.Request.Context(), student.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pending_recoveries": owned,
		"slots":              slots,
	})
}

type claimRecoveryRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// POST /api/recoveries/:id/claim
func (h *Handler) claimRecovery(c *gin.Context) {
	var req claimRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.users.StudentForUser(c.Request.Context(), req.StudentID, uid(c), callerCaps(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.recoveries.Claim(c.Request.Context(), c.Param("id"), student, time.Now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "claimed"})
}
