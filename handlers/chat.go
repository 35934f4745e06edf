package handlers

import (
	"net/http"

	"smiledesk/middleware"
	"smiledesk/models"
	"smiledesk/services/assistant"
	"smiledesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the conversational endpoints.
type ChatHandler struct {
	Assistant assistant.Service
	Logger    *zap.Logger
}

func NewChatHandler(svc assistant.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Assistant: svc, Logger: logger}
}

// sessionID keys the conversation: the client's session header when present,
// the client IP otherwise.
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	return middleware.ClientIP(c)
}

// HandleChat handles POST /api/chat.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Error("Invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	reply, err := h.Assistant.HandleTurn(c.Request.Context(), sessionID(c), req.Message)
	if err != nil {
		h.Logger.Error("Chat turn failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "chat failed", "Please try again in a moment.")
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Reply: reply})
}

// HandleReset handles POST /api/reset.
func (h *ChatHandler) HandleReset(c *gin.Context) {
	greeting, err := h.Assistant.Reset(c.Request.Context(), sessionID(c))
	if err != nil {
		h.Logger.Error("Session reset failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "reset failed", "Please try again in a moment.")
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Reply: greeting})
}
