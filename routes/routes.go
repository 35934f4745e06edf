package routes

import (
	"time"

	"smiledesk/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all endpoints with the assembled handler bundle.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.POST("/chat", hb.ChatHandler)
		api.POST("/reset", hb.ResetHandler)
		api.POST("/appointments", hb.CreateAppointmentHandler)
		api.POST("/appointments/check-slot", hb.CheckSlotHandler)
		api.GET("/appointments", hb.ListAppointmentsHandler)
		api.POST("/knowledge", hb.IngestKnowledgeHandler)
	}

	r.GET("/health", hb.HealthHandler)
}
