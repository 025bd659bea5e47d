package repository

import (
	"context"
	"database/sql"

	"coursehub/models"

	"github.com/google/uuid"
)

// NotificationStore persists per-recipient notification records. Writes
// happen on the dispatcher's background path, never on the request path.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type postgresNotificationStore struct {
	db *sql.DB
}

// NewNotificationStore returns a Postgres-backed NotificationStore.
func NewNotificationStore(db *sql.DB) NotificationStore {
	return &postgresNotificationStore{db: db}
}

func (s *postgresNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, type, title, message,
			related_payment_id, course_id, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.RecipientID, n.Type, n.Title, n.Message,
		n.RelatedPaymentID, n.CourseID, n.Amount)
	return err
}

func (s *postgresNotificationStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, recipient_id, type, title, message, related_payment_id, course_id, amount, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var paymentID, courseID uuid.NullUUID
		var amount sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message,
			&paymentID, &courseID, &amount, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			id := paymentID.UUID
			n.RelatedPaymentID = &id
		}
		if courseID.Valid {
			id := courseID.UUID
			n.CourseID = &id
		}
		if amount.Valid {
			v := amount.Float64
			n.Amount = &v
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *postgresNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}
