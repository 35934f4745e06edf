package handlers

import (
	"net/http"

	"smiledesk/services/knowledge"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KnowledgeHandler exposes the clinic knowledge ingestion endpoint. Store is
// nil when no embedding model is configured.
type KnowledgeHandler struct {
	Store  knowledge.Ingester
	Logger *zap.Logger
}

func NewKnowledgeHandler(store knowledge.Ingester, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{Store: store, Logger: logger}
}

type ingestRequest struct {
	ChunkID string `json:"chunk_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// IngestKnowledge handles POST /api/knowledge.
func (h *KnowledgeHandler) IngestKnowledge(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Knowledge ingestion requires the embedding model to be configured"})
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Error("Invalid knowledge payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := h.Store.Ingest(c.Request.Context(), req.ChunkID, req.Text); err != nil {
		h.Logger.Error("Knowledge ingestion failed", zap.String("chunkID", req.ChunkID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store the knowledge chunk. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chunk_id": req.ChunkID})
}
