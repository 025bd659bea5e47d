package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the state-changing event a notification
// reports.
type NotificationType string

const (
	NotificationPaymentSubmitted NotificationType = "payment_submitted"
	NotificationPaymentApproved  NotificationType = "payment_approved"
	NotificationPaymentRejected  NotificationType = "payment_rejected"
)

// Notification is a stored per-recipient event record. Delivery is
// best-effort; a failed or delayed notification never reverts the payment
// state change it reports.
type Notification struct {
	ID               uuid.UUID        `json:"id"`
	RecipientID      uuid.UUID        `json:"recipient_id"`
	Type             NotificationType `json:"type"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	RelatedPaymentID *uuid.UUID       `json:"related_payment_id,omitempty"`
	CourseID         *uuid.UUID       `json:"course_id,omitempty"`
	Amount           *float64         `json:"amount,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
}
