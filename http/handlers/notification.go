package handlers

import (
	"net/http"

	"coursehub/http/response"
	"coursehub/repository"

	"github.com/google/uuid"
)

// NotificationHandler serves the in-app notification feed.
type NotificationHandler struct {
	notifications repository.NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notifications repository.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns a recipient's notifications, newest first.
// GET /notifications?recipient_id=...&unread_only=true&limit=50
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recipientID, err := uuid.Parse(r.URL.Query().Get("recipient_id"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid or missing recipient_id")
		return
	}

	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	limit := 50
	if str := r.URL.Query().Get("limit"); str != "" {
		if n, err := parsePositiveInt(str); err == nil {
			limit = n
		}
	}

	notifications, err := h.notifications.ListByRecipient(r.Context(), recipientID, unreadOnly, limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Notifications retrieved", map[string]interface{}{
		"count": len(notifications),
		"data":  notifications,
	})
}

// MarkNotificationRead marks one notification as read.
// POST /notifications/read?id=...
func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid or missing notification id")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusOK, "Notification marked as read", map[string]interface{}{
		"id": id,
	})
}
