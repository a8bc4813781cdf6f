package controller

import (
	"net/http"

	"github.com/academiapadel/backend/internal/model"
	"github.com/gin-gonic/gin"
)

type registerUserRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Phone    string `json:"phone"`
	Level    string `json:"level"`
}

// POST /api/users
func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := model.UserRole(req.Role)
	if role != model.RoleAdulto && !callerCaps(c).ManageUsers {
		c.JSON(http.StatusForbidden, gin.H{"error": "no permission"})
		return
	}

	level := model.PlayerLevel(req.Level)
	if role == model.RoleAdulto && !level.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level is required for adulto accounts"})
		return
	}

	profile := &model.Profile{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
		Phone:    req.Phone,
	}

	if err := h.users.Register(c.Request.Context(), profile, level); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GET /api/me
func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":      uid(c),
		"role":         callerRole(c),
		"capabilities": callerCaps(c),
	})
}

// GET /api/students
func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.users.StudentsOf(c.Request.Context(), uid(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

type addStudentRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Level    string `json:"level" binding:"required"`
	IsMinor  bool   `json:"is_minor"`
	Notes    string `json:"notes"`
}

// POST /api/students
func (h *Handler) addStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := &model.Student{
		UserID:   uid(c),
		FullName: req.FullName,
		Level:    model.PlayerLevel(req.Level),
		IsMinor:  req.IsMinor,
		Notes:    req.Notes,
	}

	if err := h.users.AddStudent(c.Request.Context(), student); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, student)
}
