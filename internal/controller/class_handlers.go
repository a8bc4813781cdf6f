package controller

import (
	"net/http"

	"github.com/academiapadel/backend/internal/model"
	"github.com/gin-gonic/gin"
)

// GET /api/classes
func (h *Handler) listClasses(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

type createClassRequest struct {
	Name        string `json:"name" binding:"required"`
	ProfessorID string `json:"professor_id" binding:"required"`
	CourtID     string `json:"court_id" binding:"required"`
	Level       string `json:"level" binding:"required"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	MaxStudents int    `json:"max_students" binding:"required"`
}

// POST /api/classes
func (h *Handler) createClass(c *gin.Context) {
	if !callerCaps(c).ManageClasses {
		c.JSON(http.StatusForbidden, gin.H{"error": "no permission"})
		return
	}

	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class := &model.Class{
		Name:        req.Name,
		ProfessorID: req.ProfessorID,
		CourtID:     req.CourtID,
		Level:       model.PlayerLevel(req.Level),
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxStudents: req.MaxStudents,
	}

	if err := h.classes.Create(c.Request.Context(), class); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// POST /api/classes/:id/deactivate
func (h *Handler) deactivateClass(c *gin.Context) {
	if !callerCaps(c).ManageClasses {
		c.JSON(http.StatusForbidden, gin.H{"error": "no permission"})
		return
	}

	if err := h.classes.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
