package handlers

import (
	"net/http"

	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the chat relay
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Stream handles POST /chat
// @Summary Relay a chat conversation to the AI backend
// @Description Streams the backend's Server-Sent Events response through to the client
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body service.ChatRequest true "Conversation"
// @Success 200 {string} string "Event stream"
// @Failure 503 {object} map[string]interface{} "Chat backend not configured"
// @Security BearerAuth
// @Router /chat [post]
func (h *ChatHandler) Stream(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chatService.RelayStream(c, &req, c.Writer); err != nil {
		// Headers may already be written once streaming began
		if !c.Writer.Written() {
			respondError(c, err)
		}
		return
	}
}
