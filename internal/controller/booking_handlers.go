package controller

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/academiapadel/backend/internal/render"
	"github.com/academiapadel/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxScreenshotBytes = 10 << 20

func parseDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

// GET /api/courts/grid?date=
func (h *Handler) dayGrid(c *gin.Context) {
	date, err := parseDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	grid, err := h.bookings.DayGrid(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// GET /api/courts/grid.png?date=
func (h *Handler) dayGridImage(c *gin.Context) {
	date, err := parseDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	grid, courts, err := h.bookings.DayGridWithCourts(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	img, err := render.GenerateDayGridImage(grid, courts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

type createBookingRequest struct {
	CourtID     string `json:"court_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time"`
	IsOpenMatch bool   `json:"is_open_match"`
	MaxPlayers  int    `json:"max_players"`
}

// POST /api/bookings
func (h *Handler) createBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), service.CreateBookingParams{
		CourtID:     req.CourtID,
		UserID:      uid(c),
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsOpenMatch: req.IsOpenMatch,
		MaxPlayers:  req.MaxPlayers,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings/open
func (h *Handler) openMatches(c *gin.Context) {
	date, err := parseDate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	matches, err := h.bookings.OpenMatches(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// POST /api/bookings/:id/join
func (h *Handler) joinOpenMatch(c *gin.Context) {
	booking, err := h.bookings.JoinOpenMatch(c.Request.Context(), c.Param("id"), uid(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// POST /api/bookings/:id/verification (multipart, field "screenshot")
func (h *Handler) submitVerification(c *gin.Context) {
	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot file is required"})
		return
	}
	if fileHeader.Size > maxScreenshotBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screenshot too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	screenshotURL := fmt.Sprintf("uploads/%s-%s", uuid.NewString(), fileHeader.Filename)

	err = h.bookings.SubmitVerification(c.Request.Context(), c.Param("id"), screenshotURL, image, fileHeader.Filename)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "verification submitted"})
}
