package routes

import (
	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/config"
	"clinic-practice-server/internal/handlers"
	"clinic-practice-server/internal/middleware"
	"clinic-practice-server/internal/services"
	"clinic-practice-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, st store.Store, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(services.NewAppointmentService(st))
	noteHandler := handlers.NewNoteHandler(services.NewNoteService(st))

	// Public routes (no authentication required), rate limited per client IP
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	public := router.Group("/")
	public.Use(limiter.Middleware())
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	// Authenticated routes: the middleware builds a Principal from the
	// bearer token plus a live identity lookup; role and ownership checks
	// happen inside the services.
	private := router.Group("/")
	private.Use(middleware.Authenticate(cfg, st))
	{
		private.GET("/hello", authHandler.Hello)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
			appointmentRoutes.GET("/doctor", appointmentHandler.ListForDoctor)
			appointmentRoutes.GET("/patient", appointmentHandler.ListForPatient)
		}

		noteRoutes := private.Group("/notes")
		{
			noteRoutes.POST("/", noteHandler.CreateNote)
			noteRoutes.GET("/", noteHandler.ListNotes)
			noteRoutes.GET("/:id", noteHandler.GetNote)
			noteRoutes.PUT("/:id", noteHandler.UpdateNote)
			noteRoutes.DELETE("/:id", noteHandler.DeleteNote)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
