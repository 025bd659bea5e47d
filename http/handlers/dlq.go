package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"coursehub/http/response"
	"coursehub/logger"
	"coursehub/repository"
	"coursehub/services/kafka"

	"github.com/google/uuid"
)

// DLQHandler serves the dead-letter queue management endpoints.
type DLQHandler struct {
	dlq repository.DLQStore
}

// NewDLQHandler creates a new DLQHandler instance
func NewDLQHandler(dlq repository.DLQStore) *DLQHandler {
	return &DLQHandler{dlq: dlq}
}

// GetDLQMessages retrieves unresolved DLQ messages
// GET /api/dlq/messages?limit=50
func (h *DLQHandler) GetDLQMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := parsePositiveInt(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	messages, err := h.dlq.List(r.Context(), true, limit)
	if err != nil {
		logger.Error("Error fetching DLQ messages: %v", err)
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch DLQ messages")
		return
	}

	response.SuccessResponse(w, http.StatusOK, "DLQ messages retrieved", map[string]interface{}{
		"count": len(messages),
		"data":  messages,
	})
}

// RetryDLQMessage republishes a specific DLQ message
// POST /api/dlq/messages/retry?id=...
func (h *DLQHandler) RetryDLQMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	messageID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid or missing message id")
		return
	}

	messages, err := h.dlq.List(r.Context(), true, 500)
	if err != nil {
		logger.Error("Error loading DLQ message %s: %v", messageID, err)
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to load message")
		return
	}

	var target *repository.DLQMessage
	for i := range messages {
		if messages[i].MessageID == messageID {
			target = &messages[i]
			break
		}
	}
	if target == nil {
		response.ErrorResponse(w, http.StatusNotFound, "unresolved DLQ message not found")
		return
	}

	succeeded := kafka.RetryMessage(r.Context(), h.dlq, *target)
	if !succeeded {
		response.ErrorResponse(w, http.StatusBadGateway, "retry failed; message remains parked")
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Message republished", map[string]interface{}{
		"messageId": messageID,
	})
}

// ResolveDLQMessage marks a DLQ message as resolved
// POST /api/dlq/messages/resolve?id=...
func (h *DLQHandler) ResolveDLQMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	messageID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid or missing message id")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == "" {
		req.Notes = "Manually resolved"
	}

	if err := h.dlq.Resolve(r.Context(), messageID, req.Notes); err != nil {
		logger.Error("Error resolving DLQ message %s: %v", messageID, err)
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve message")
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Message marked as resolved", map[string]interface{}{
		"messageId": messageID,
	})
}

// GetDLQStats retrieves statistics about DLQ messages
// GET /api/dlq/stats
func (h *DLQHandler) GetDLQStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.dlq.Stats(r.Context())
	if err != nil {
		logger.Error("Error fetching DLQ statistics: %v", err)
		response.ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch DLQ statistics")
		return
	}

	response.SuccessResponse(w, http.StatusOK, "DLQ statistics", stats)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}
