package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"coursehub/models"

	"github.com/google/uuid"
)

// ListFilter narrows and pages a payment listing.
type ListFilter struct {
	Status   *models.PaymentStatus
	Search   string // matches student name, phone or transaction reference
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	SortBy   string // created_at | amount | decided_at | student_name
	SortDesc bool
}

// PaymentStore is the authoritative store for payment records.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// FindPending returns the pending payment for the pair, or nil when none.
	FindPending(ctx context.Context, studentID, courseID uuid.UUID) (*models.Payment, error)
	// FindByReference returns the payment holding the reference, or nil when none.
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	// MarkDecided applies the terminal transition only if the record is still
	// pending at write time. Returns false when another writer won the race.
	MarkDecided(ctx context.Context, id uuid.UUID, status models.PaymentStatus, decidedBy string, reason *string, decidedAt time.Time) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]models.Payment, models.PaymentCounters, error)
	// Aggregate computes per-status count/amount sums over the window.
	Aggregate(ctx context.Context, from, to *time.Time) (pending, accepted, rejected models.StatusAggregate, err error)
	// DailySeries computes the per-day trend points over the window.
	DailySeries(ctx context.Context, from, to *time.Time) ([]models.DailyPoint, error)
}

type postgresPaymentStore struct {
	db *sql.DB
}

// NewPaymentStore returns a Postgres-backed PaymentStore.
func NewPaymentStore(db *sql.DB) PaymentStore {
	return &postgresPaymentStore{db: db}
}

const paymentColumns = `id, student_id, course_id, student_name, student_phone, amount, currency,
	transaction_reference, screenshot_ref, status, decided_at, decided_by, rejection_reason,
	created_at, updated_at`

func (s *postgresPaymentStore) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, student_id, course_id, student_name, student_phone,
			amount, currency, transaction_reference, screenshot_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.StudentID, p.CourseID, p.StudentName, p.StudentPhone,
		p.Amount, p.Currency, p.TransactionReference, p.ScreenshotRef, p.Status, p.CreatedAt)
	return err
}

func (s *postgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(s.db.QueryRowContext(ctx, query, id))
}

func (s *postgresPaymentStore) FindPending(ctx context.Context, studentID, courseID uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE student_id = $1 AND course_id = $2 AND status = $3`
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, studentID, courseID, models.PaymentPending))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *postgresPaymentStore) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_reference = $1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *postgresPaymentStore) MarkDecided(ctx context.Context, id uuid.UUID, status models.PaymentStatus, decidedBy string, reason *string, decidedAt time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, decided_at = $2, decided_by = $3, rejection_reason = $4, updated_at = $2
		WHERE id = $5 AND status = $6`
	result, err := s.db.ExecContext(ctx, query, status, decidedAt, decidedBy, reason, id, models.PaymentPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *postgresPaymentStore) List(ctx context.Context, filter ListFilter) ([]models.Payment, models.PaymentCounters, error) {
	var counters models.PaymentCounters

	where, args := buildListWhere(filter, false)

	// Counters ignore the status filter so the caller sees the whole queue
	// breakdown for the searched window.
	counterWhere, counterArgs := buildListWhere(filter, true)
	counterQuery := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM payments ` + counterWhere
	err := s.db.QueryRowContext(ctx, counterQuery, counterArgs...).
		Scan(&counters.Total, &counters.Pending, &counters.Accepted, &counters.Rejected)
	if err != nil {
		return nil, counters, err
	}

	orderBy := sortColumn(filter.SortBy)
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM payments %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		paymentColumns, where, orderBy, direction, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, counters, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, counters, err
		}
		payments = append(payments, *p)
	}
	return payments, counters, rows.Err()
}

func (s *postgresPaymentStore) Aggregate(ctx context.Context, from, to *time.Time) (models.StatusAggregate, models.StatusAggregate, models.StatusAggregate, error) {
	var pending, accepted, rejected models.StatusAggregate

	where, args := buildWindowWhere(from, to)
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COALESCE(SUM(amount) FILTER (WHERE status = 'accepted'), 0),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COALESCE(SUM(amount) FILTER (WHERE status = 'rejected'), 0)
		FROM payments ` + where

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&pending.Count, &pending.Amount,
		&accepted.Count, &accepted.Amount,
		&rejected.Count, &rejected.Amount)
	return pending, accepted, rejected, err
}

func (s *postgresPaymentStore) DailySeries(ctx context.Context, from, to *time.Time) ([]models.DailyPoint, error) {
	where, args := buildWindowWhere(from, to)
	query := `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'accepted'), 0)
		FROM payments ` + where + `
		GROUP BY day
		ORDER BY day ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []models.DailyPoint{}
	for rows.Next() {
		var point models.DailyPoint
		if err := rows.Scan(&point.Date, &point.Count, &point.Amount, &point.ApprovedAmount); err != nil {
			return nil, err
		}
		series = append(series, point)
	}
	return series, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var reference, decidedBy, reason sql.NullString
	var decidedAt sql.NullTime

	err := row.Scan(&p.ID, &p.StudentID, &p.CourseID, &p.StudentName, &p.StudentPhone,
		&p.Amount, &p.Currency, &reference, &p.ScreenshotRef, &p.Status,
		&decidedAt, &decidedBy, &reason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if reference.Valid {
		p.TransactionReference = &reference.String
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		p.DecidedAt = &t
	}
	if decidedBy.Valid {
		p.DecidedBy = &decidedBy.String
	}
	if reason.Valid {
		p.RejectionReason = &reason.String
	}
	return &p, nil
}

func buildListWhere(filter ListFilter, skipStatus bool) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if filter.Status != nil && !skipStatus {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(student_name ILIKE $%d OR student_phone ILIKE $%d OR transaction_reference ILIKE $%d)", n, n, n))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func buildWindowWhere(from, to *time.Time) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	if from != nil {
		args = append(args, *from)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// sortColumn whitelists sortable columns; anything else falls back to
// created_at so the caller cannot inject SQL through the sort parameter.
func sortColumn(name string) string {
	switch name {
	case "amount", "decided_at", "student_name", "created_at":
		return name
	default:
		return "created_at"
	}
}
