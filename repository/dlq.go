package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DLQMessage is a Kafka message that exhausted its publish retries and was
// parked for later redelivery or manual resolution.
type DLQMessage struct {
	MessageID    uuid.UUID  `json:"message_id"`
	Topic        string     `json:"topic"`
	Key          string     `json:"key"`
	Value        []byte     `json:"value"`
	ErrorMessage string     `json:"error_message"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	LastRetryAt  *time.Time `json:"last_retry_at,omitempty"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DLQStats summarizes the dead-letter queue.
type DLQStats struct {
	Total      int `json:"total_dlq_messages"`
	Unresolved int `json:"unresolved_messages"`
	Resolved   int `json:"resolved_messages"`
}

// DLQStore parks and manages failed outbound messages.
type DLQStore interface {
	Store(ctx context.Context, topic, key string, value []byte, errorMessage string) error
	List(ctx context.Context, unresolvedOnly bool, limit int) ([]DLQMessage, error)
	// NextRetryable returns unresolved messages whose retry budget is not
	// yet exhausted, oldest first.
	NextRetryable(ctx context.Context, limit int) ([]DLQMessage, error)
	MarkRetried(ctx context.Context, messageID uuid.UUID, succeeded bool) error
	Resolve(ctx context.Context, messageID uuid.UUID, notes string) error
	Stats(ctx context.Context) (DLQStats, error)
}

type postgresDLQStore struct {
	db *sql.DB
}

// NewDLQStore returns a Postgres-backed DLQStore.
func NewDLQStore(db *sql.DB) DLQStore {
	return &postgresDLQStore{db: db}
}

func (s *postgresDLQStore) Store(ctx context.Context, topic, key string, value []byte, errorMessage string) error {
	query := `
		INSERT INTO dlq_messages (message_id, topic, key, value, error_message)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, uuid.New(), topic, key, value, errorMessage)
	return err
}

const dlqColumns = `message_id, topic, key, value, error_message, retry_count, max_retries,
	last_retry_at, resolved, resolved_at, notes, created_at`

func (s *postgresDLQStore) List(ctx context.Context, unresolvedOnly bool, limit int) ([]DLQMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT ` + dlqColumns + ` FROM dlq_messages`
	if unresolvedOnly {
		query += ` WHERE resolved = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDLQMessages(rows)
}

func (s *postgresDLQStore) NextRetryable(ctx context.Context, limit int) ([]DLQMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT ` + dlqColumns + ` FROM dlq_messages
		WHERE resolved = FALSE AND retry_count < max_retries
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDLQMessages(rows)
}

func (s *postgresDLQStore) MarkRetried(ctx context.Context, messageID uuid.UUID, succeeded bool) error {
	var query string
	if succeeded {
		query = `
			UPDATE dlq_messages
			SET retry_count = retry_count + 1, last_retry_at = NOW(),
				resolved = TRUE, resolved_at = NOW(), notes = 'Auto-retried successfully'
			WHERE message_id = $1`
	} else {
		query = `
			UPDATE dlq_messages
			SET retry_count = retry_count + 1, last_retry_at = NOW()
			WHERE message_id = $1`
	}
	_, err := s.db.ExecContext(ctx, query, messageID)
	return err
}

func (s *postgresDLQStore) Resolve(ctx context.Context, messageID uuid.UUID, notes string) error {
	query := `
		UPDATE dlq_messages
		SET resolved = TRUE, resolved_at = NOW(), notes = $2
		WHERE message_id = $1`
	_, err := s.db.ExecContext(ctx, query, messageID, notes)
	return err
}

func (s *postgresDLQStore) Stats(ctx context.Context) (DLQStats, error) {
	var stats DLQStats
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE resolved = FALSE),
			COUNT(*) FILTER (WHERE resolved = TRUE)
		FROM dlq_messages`
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Unresolved, &stats.Resolved)
	return stats, err
}

func scanDLQMessages(rows *sql.Rows) ([]DLQMessage, error) {
	messages := []DLQMessage{}
	for rows.Next() {
		var m DLQMessage
		var key, errMsg, notes sql.NullString
		var lastRetryAt, resolvedAt sql.NullTime
		if err := rows.Scan(&m.MessageID, &m.Topic, &key, &m.Value, &errMsg,
			&m.RetryCount, &m.MaxRetries, &lastRetryAt, &m.Resolved, &resolvedAt,
			&notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Key = key.String
		m.ErrorMessage = errMsg.String
		m.Notes = notes.String
		if lastRetryAt.Valid {
			t := lastRetryAt.Time
			m.LastRetryAt = &t
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			m.ResolvedAt = &t
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
