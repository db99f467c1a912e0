package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"autobook/handlers"
	"autobook/middleware"
)

// RegisterCallRoutes registers the call-session endpoints driven by the
// voice agent.
func RegisterCallRoutes(r *gin.Engine, ch *handlers.CallHandler) {
	api := r.Group("/api/call")
	{
		api.POST("/start", ch.StartCall)
		api.POST("/update-info", ch.UpdateInfo)
		api.POST("/check-availability", ch.CheckAvailability)
		api.POST("/select-time", ch.SelectTime)
		api.POST("/book-appointment", ch.BookAppointment)
		api.POST("/end", ch.EndCall)
		api.GET("/state/:callId", ch.CallState)
		api.GET("/sessions", ch.ListSessions)
		api.POST("/reconcile", ch.Reconcile)
	}
	r.POST("/api/webhook", ch.Webhook)
}

// RegisterAppointmentRoutes registers the direct appointment-management
// endpoints used by the front desk.
func RegisterAppointmentRoutes(r *gin.Engine, ah *handlers.AppointmentHandler) {
	api := r.Group("/api/appointments")
	{
		api.POST("/check-availability", ah.CheckAvailability)
		api.POST("", ah.Create)
		api.GET("", ah.List)
		api.GET("/:id", ah.Get)
		api.PUT("/:id", ah.Update)
		api.DELETE("/:id", ah.Cancel)
	}
	r.POST("/api/check-availability", ah.CheckAvailability)
	r.GET("/api/statistics", ah.Statistics)
	r.GET("/api/service-types", ah.ServiceTypes)
	r.GET("/api/business-hours", ah.BusinessHours)
}

// RegisterHealthRoute registers a simple liveness check.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ch *handlers.CallHandler, ah *handlers.AppointmentHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterCallRoutes(r, ch)
	RegisterAppointmentRoutes(r, ah)
	RegisterHealthRoute(r)
}
