package controller

import (
	"github.com/academiapadel/backend/internal/config"
	"github.com/academiapadel/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	users       *service.UserService
	attendances *service.AttendanceService
	recoveries  *service.RecoveryService
	bookings    *service.BookingService
	tournaments *service.TournamentService
	classes     *service.ClassService
	logger      *zap.Logger
}

func NewHandler(
	users *service.UserService,
	attendances *service.AttendanceService,
	recoveries *service.RecoveryService,
	bookings *service.BookingService,
	tournaments *service.TournamentService,
	classes *service.ClassService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:       users,
		attendances: attendances,
		recoveries:  recoveries,
		bookings:    bookings,
		tournaments: tournaments,
		classes:     classes,
		logger:      logger,
	}
}

// NewRouter wires the routes. The identity middleware resolves the caller
// and their capabilities once; handlers only consume them.
func NewRouter(h *Handler, env string, authMode config.AuthMode) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.Use(h.identity(authMode))
	{
		api.POST("/users", h.registerUser)
		api.GET("/me", h.me)
		api.GET("/students", h.listStudents)
		api.POST("/students", h.addStudent)

		api.GET("/attendances", h.attendanceHistory)
		api.POST("/attendances/:id/confirm", h.confirmAttendance)
		api.POST("/attendances/:id/cancel", h.cancelAttendance)
		api.POST("/attendances/:id/outcome", h.markOutcome)

		api.GET("/classes", h.listClasses)
		api.POST("/classes", h.createClass)
		api.POST("/classes/:id/deactivate", h.deactivateClass)
		api.POST("/sessions/:id/cancel", h.cancelSession)

		api.GET("/recoveries", h.listRecoveries)
		api.POST("/recoveries/:id/claim", h.claimRecovery)

		api.GET("/courts/grid", h.dayGrid)
		api.GET("/courts/grid.png", h.dayGridImage)

		api.POST("/bookings", h.createBooking)
		api.GET("/bookings/open", h.openMatches)
		api.POST("/bookings/:id/join", h.joinOpenMatch)
		api.POST("/bookings/:id/verification", h.submitVerification)

		api.GET("/tournaments", h.listTournaments)
		api.POST("/tournaments/:id/register", h.registerTeam)
	}

	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
