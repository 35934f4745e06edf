package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the route handlers wired in main.
type HandlerBundle struct {
	// Chat endpoints.
	ChatHandler  gin.HandlerFunc
	ResetHandler gin.HandlerFunc

	// Booking endpoints.
	CreateAppointmentHandler gin.HandlerFunc
	CheckSlotHandler         gin.HandlerFunc
	ListAppointmentsHandler  gin.HandlerFunc

	// Knowledge ingestion.
	IngestKnowledgeHandler gin.HandlerFunc

	// Ops endpoints.
	HealthHandler gin.HandlerFunc
}
