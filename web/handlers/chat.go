package handlers

import (
	"net/http"

	"scm-agent/web/services"
	"scm-agent/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chat   *services.ChatService
	data   *services.DataService
	logger *zap.Logger
}

func NewChatHandler(chat *services.ChatService, data *services.DataService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, data: data, logger: logger}
}

// SendMessage answers one question. Answers superseded by a newer question
// in the same session return 409 with no answer body.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	resp, stale, err := h.chat.Ask(c.Request.Context(), req.SessionID, req.Question)
	if err != nil {
		h.logger.Error("failed to answer question", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data is currently unavailable, try refreshing"})
		return
	}
	if stale {
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer question"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh re-consumes both topics and swaps the data snapshot.
func (h *ChatHandler) Refresh(c *gin.Context) {
	snap, err := h.data.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("data refresh failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, types.RefreshResponse{
		InventoryRecords: len(snap.Dataset.Inventory),
		RequestRecords:   len(snap.Dataset.Requests),
		Projects:         len(snap.Lexicon.Projects),
		Items:            len(snap.Lexicon.Items),
		RefreshedAt:      snap.RefreshedAt,
	})
}

// History returns the stored messages for a session.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	messages, err := h.chat.History(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
