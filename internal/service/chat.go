package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dashboard-backend/internal/config"
	apperrors "dashboard-backend/internal/errors"
	"dashboard-backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ChatService relays chat messages to the external AI backend and streams the
// response back to the client. The backend is consumed as an opaque
// message-relay service; no chat state is persisted here.
type ChatService struct {
	cfg    *config.Config
	client *http.Client
	log    *logger.Logger
}

// NewChatService creates a new chat relay service
func NewChatService(cfg *config.Config) *ChatService {
	return &ChatService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		log: logger.New(),
	}
}

// ChatMessage is one message in a relayed conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is the payload relayed to the AI backend
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Stream   bool          `json:"stream"`
}

// RelayStream forwards the conversation to the configured backend and copies
// the Server-Sent Events response through to the client as it arrives.
func (s *ChatService) RelayStream(c *gin.Context, req *ChatRequest, writer gin.ResponseWriter) error {
	if s.cfg.ChatBackendURL == "" {
		return apperrors.ErrChatBackendNotConfigured
	}

	req.Stream = true
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, s.cfg.ChatBackendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if s.cfg.ChatAPIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.cfg.ChatAPIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat backend returned status %d", resp.StatusCode)
	}

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)

	flusher, canFlush := writer.(http.Flusher)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintf(writer, "%s\n", scanner.Text()); err != nil {
			return fmt.Errorf("write stream chunk: %w", err)
		}
		if canFlush {
			flusher.Flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read chat stream: %w", err)
	}

	return nil
}
