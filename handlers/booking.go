package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"smiledesk/models"
	"smiledesk/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the structured booking endpoints.
type BookingHandler struct {
	Orchestrator booking.Orchestrator
	Logger       *zap.Logger
}

func NewBookingHandler(orc booking.Orchestrator, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Orchestrator: orc, Logger: logger}
}

// CreateAppointment handles POST /api/appointments.
func (h *BookingHandler) CreateAppointment(c *gin.Context) {
	var appt models.Appointment
	if err := c.ShouldBindJSON(&appt); err != nil {
		h.Logger.Error("Invalid appointment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	booked, err := h.Orchestrator.Book(c.Request.Context(), &appt)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booked)
}

// CheckSlot handles POST /api/appointments/check-slot.
func (h *BookingHandler) CheckSlot(c *gin.Context) {
	var appt models.Appointment
	if err := c.ShouldBindJSON(&appt); err != nil {
		h.Logger.Error("Invalid slot-check payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	free, err := h.Orchestrator.CheckSlot(c.Request.Context(), &appt)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": free})
}

// ListAppointments handles GET /api/appointments?user_id=<email>.
func (h *BookingHandler) ListAppointments(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	appts, err := h.Orchestrator.History(c.Request.Context(), userID, limit)
	if err != nil {
		h.Logger.Error("Appointment listing failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch appointments"})
		return
	}

	c.JSON(http.StatusOK, appts)
}

func (h *BookingHandler) respondBookingError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, booking.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Requested time slot is not available. Please choose another time.",
		})
	case errors.Is(err, booking.ErrUpstream):
		h.Logger.Error("Upstream booking failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service failed. Please try again later."})
	default:
		h.Logger.Error("Booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking failed. Please try again later."})
	}
}
