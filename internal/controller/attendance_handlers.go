package controller

import (
	"net/http"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/gin-gonic/gin"
)

// GET /api/attendances?student_id=
func (h *Handler) attendanceHistory(c *gin.Context) {
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

	history, err := h.attendances.HistoryFor(c.Request.Context(), student.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// authorizeAttendance resolves the attendance's student and checks the
// caller owns it. Staff capabilities bypass ownership via StudentForUser.
func (h *Handler) authorizeAttendance(c *gin.Context, attendanceID string) bool {
	att, err := h.attendances.Get(c.Request.Context(), attendanceID)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	if _, err := h.users.StudentForUser(c.Request.Context(), att.StudentID, uid(c), callerCaps(c)); err != nil {
		h.respondError(c, err)
		return false
	}
	return true
}

// POST /api/attendances/:id/confirm
func (h *Handler) confirmAttendance(c *gin.Context) {
	if !h.authorizeAttendance(c, c.Param("id")) {
		return
	}
	if err := h.attendances.Confirm(c.Request.Context(), c.Param("id"), time.Now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// POST /api/attendances/:id/cancel
func (h *Handler) cancelAttendance(c *gin.Context) {
	if !h.authorizeAttendance(c, c.Param("id")) {
		return
	}
	if err := h.attendances.Cancel(c.Request.Context(), c.Param("id"), time.Now()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// POST /api/sessions/:id/cancel
func (h *Handler) cancelSession(c *gin.Context) {
	err := h.attendances.CancelSession(c.Request.Context(), c.Param("id"), callerCaps(c), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type markOutcomeRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// POST /api/attendances/:id/outcome
func (h *Handler) markOutcome(c *gin.Context) {
	var req markOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := model.AttendanceStatus(req.Outcome)
	if outcome != model.AttendanceStatusAttended && outcome != model.AttendanceStatusNoShow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "outcome must be attended or no_show"})
		return
	}

	err := h.attendances.MarkOutcome(c.Request.Context(), c.Param("id"), outcome, callerCaps(c), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(outcome)})
}
