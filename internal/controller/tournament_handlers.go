package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /api/tournaments
func (h *Handler) listTournaments(c *gin.Context) {
	tournaments, err := h.tournaments.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tournaments)
}

type registerTeamRequest struct {
	TeamName string `json:"team_name" binding:"required"`
}

// POST /api/tournaments/:id/register
func (h *Handler) registerTeam(c *gin.Context) {
	var req registerTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.tournaments.Register(c.Request.Context(), c.Param("id"), req.TeamName, uid(c), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}
