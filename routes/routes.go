package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pharmalink/handlers"
	"pharmalink/middleware"
	"pharmalink/models"
	"pharmalink/utils"
)

// RegisterDoctorRoutes registers doctor account and presence endpoints.
func RegisterDoctorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/doctors")
	{
		api.POST("/register", hb.Doctor.Register)
		api.POST("/login", hb.Doctor.Login)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(models.RoleDoctor, hb.DoctorRepo, hb.AdminRepo, hb.Tokens))
		protected.POST("/logout", hb.Doctor.Logout)
		protected.PATCH("/availability", hb.Doctor.ToggleAvailability)
	}
}

// RegisterDeviceRoutes registers kiosk endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.POST("/register", hb.Device.Register)
	}
}

// RegisterSessionRoutes registers the session coordination endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.POST("/initiate", hb.Session.Initiate)
		api.GET("/active", hb.Session.GetActive)
		api.GET("/history", hb.Session.GetHistory)
		api.PATCH("/:sessionId/complete", hb.Session.Complete)
		api.PATCH("/:sessionId/cancel", hb.Session.Cancel)
	}
}

// RegisterAdminRoutes registers dashboard endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.POST("/login", hb.Admin.UnifiedLogin)
		api.POST("/signup", hb.Admin.Signup)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(models.RoleAdmin, hb.DoctorRepo, hb.AdminRepo, hb.Tokens))
		protected.GET("/online-doctors", hb.Admin.OnlineDoctors)
		protected.GET("/active-sessions", hb.Admin.ActiveSessions)
		protected.GET("/devices", hb.Admin.Devices)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Unified login lives at the API root as well as under /api/admin.
	r.POST("/api/login", hb.Admin.UnifiedLogin)

	RegisterDoctorRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)

	// Dashboard push channel.
	r.GET("/ws", hb.WS.Serve)
}
