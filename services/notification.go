package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/repository"
	"coursehub/services/kafka"

	"github.com/google/uuid"
)

// Dispatcher is the fire-and-forget notification side channel. Every
// public method returns immediately; persistence, event publishing and
// email delivery happen on a background goroutine and their failure is
// logged, never propagated to the request that triggered them.
type Dispatcher struct {
	notifications repository.NotificationStore
	admins        repository.AdminStore
	students      repository.StudentStore
	receipts      *ReceiptGenerator
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(
	notifications repository.NotificationStore,
	admins repository.AdminStore,
	students repository.StudentStore,
	receipts *ReceiptGenerator,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		admins:        admins,
		students:      students,
		receipts:      receipts,
	}
}

// PaymentSubmitted informs the student and every administrator that a new
// payment awaits review.
func (d *Dispatcher) PaymentSubmitted(p *models.Payment, course *models.Course) {
	go d.dispatchSubmitted(p, course)
}

// PaymentDecided informs the student of the approval or rejection.
func (d *Dispatcher) PaymentDecided(p *models.Payment, course *models.Course) {
	go d.dispatchDecided(p, course)
}

func (d *Dispatcher) dispatchSubmitted(p *models.Payment, course *models.Course) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	title := "Payment submitted"
	message := fmt.Sprintf("Your payment of %.2f %s for %q was received and is awaiting review.",
		p.Amount, p.Currency, course.Title)
	d.persist(ctx, p, course, p.StudentID, models.NotificationPaymentSubmitted, title, message)

	admins, err := d.admins.List(ctx)
	if err != nil {
		logger.Error("Error listing admins for submission alert: %v", err)
		admins = nil
	}
	adminMessage := fmt.Sprintf("%s submitted a payment of %.2f %s for %q (reference %s).",
		p.StudentName, p.Amount, p.Currency, course.Title, referenceOf(p))
	for _, admin := range admins {
		d.persist(ctx, p, course, admin.ID, models.NotificationPaymentSubmitted,
			"New payment awaiting review", adminMessage)
	}

	d.publishEvent("payment.submitted", p)

	if email := d.studentEmail(ctx, p.StudentID); email != "" {
		body := submittedEmailBody(p, course)
		if err := SendEmail(email, "We received your payment", body); err != nil {
			logger.Warn("Failed to queue submission email to %s: %v", email, err)
		}
	}
	for _, to := range adminAlertRecipients(admins) {
		body := adminAlertEmailBody(p, course)
		if err := SendEmail(to, "New payment awaiting review", body); err != nil {
			logger.Warn("Failed to queue admin alert to %s: %v", to, err)
		}
	}
}

// adminAlertRecipients prefers the admin accounts; the configured
// ADMIN_EMAILS list is the fallback when no account exists yet.
func adminAlertRecipients(admins []models.Admin) []string {
	recipients := []string{}
	for _, admin := range admins {
		if admin.Email != "" {
			recipients = append(recipients, admin.Email)
		}
	}
	if len(recipients) > 0 {
		return recipients
	}
	for _, raw := range strings.Split(config.AppConfig.AdminEmails, ",") {
		if addr := strings.TrimSpace(raw); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return recipients
}

func (d *Dispatcher) dispatchDecided(p *models.Payment, course *models.Course) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var notifType models.NotificationType
	var title, message, event string

	switch p.Status {
	case models.PaymentAccepted:
		notifType = models.NotificationPaymentApproved
		title = "Payment approved"
		message = fmt.Sprintf("Your payment for %q was approved. You now have full access to the course.", course.Title)
		event = "payment.approved"
	case models.PaymentRejected:
		notifType = models.NotificationPaymentRejected
		title = "Payment rejected"
		message = fmt.Sprintf("Your payment for %q was rejected.", course.Title)
		if p.RejectionReason != nil {
			message += " Reason: " + *p.RejectionReason
		}
		event = "payment.rejected"
	default:
		logger.Warn("Dispatch requested for undecided payment %s", p.ID)
		return
	}

	d.persist(ctx, p, course, p.StudentID, notifType, title, message)
	d.publishEvent(event, p)

	email := d.studentEmail(ctx, p.StudentID)
	if email == "" {
		return
	}

	if p.Status == models.PaymentAccepted {
		var attachments []string
		if path, err := d.receipts.Generate(p, course); err != nil {
			logger.Warn("Failed to generate receipt for payment %s: %v", p.ID, err)
		} else {
			attachments = append(attachments, path)
		}
		if err := SendEmail(email, "Your payment was approved", approvedEmailBody(p, course), attachments...); err != nil {
			logger.Warn("Failed to queue approval email to %s: %v", email, err)
		}
		return
	}

	if err := SendEmail(email, "Your payment was rejected", rejectedEmailBody(p, course)); err != nil {
		logger.Warn("Failed to queue rejection email to %s: %v", email, err)
	}
}

func (d *Dispatcher) persist(ctx context.Context, p *models.Payment, course *models.Course, recipient uuid.UUID, notifType models.NotificationType, title, message string) {
	paymentID := p.ID
	courseID := course.ID
	amount := p.Amount
	n := &models.Notification{
		ID:               uuid.New(),
		RecipientID:      recipient,
		Type:             notifType,
		Title:            title,
		Message:          message,
		RelatedPaymentID: &paymentID,
		CourseID:         &courseID,
		Amount:           &amount,
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		logger.Error("Error storing %s notification for %s: %v", notifType, recipient, err)
	}
}

func (d *Dispatcher) publishEvent(event string, p *models.Payment) {
	payload := map[string]interface{}{
		"event":      event,
		"payment_id": p.ID.String(),
		"student_id": p.StudentID.String(),
		"course_id":  p.CourseID.String(),
		"amount":     p.Amount,
		"currency":   p.Currency,
		"status":     string(p.Status),
		"ts":         time.Now().UTC().Format(time.RFC3339),
	}
	if err := kafka.Publish(config.AppConfig.KafkaTopic, "payment-"+p.ID.String(), payload); err != nil {
		logger.Warn("Failed to publish %s event: %v", event, err)
	}
}

func (d *Dispatcher) studentEmail(ctx context.Context, studentID uuid.UUID) string {
	student, err := d.students.GetByID(ctx, studentID)
	if err != nil {
		logger.Warn("Error loading student %s for email delivery: %v", studentID, err)
		return ""
	}
	return student.Email
}

func referenceOf(p *models.Payment) string {
	if p.TransactionReference != nil {
		return *p.TransactionReference
	}
	return "none"
}
