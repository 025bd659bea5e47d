package repository

import (
	"context"
	"database/sql"
	"time"

	"coursehub/models"

	"github.com/google/uuid"
)

// EnrollmentStore maintains the student-side enrollment aggregate. Every
// write is an upsert so a retried synchronization pass converges instead
// of corrupting state.
type EnrollmentStore interface {
	// Get returns the enrollment entry for the pair, or nil when none exists.
	Get(ctx context.Context, studentID, courseID uuid.UUID) (*models.Enrollment, error)
	// UpsertPending records a fresh submission against the entry, creating
	// it on first contact with the course.
	UpsertPending(ctx context.Context, studentID, courseID, paymentID uuid.UUID, proofRef string) error
	// MarkApproved stamps the entry accepted, backfilling it if the student
	// record somehow lacks one. Re-running keeps the original approval time.
	MarkApproved(ctx context.Context, studentID, courseID, paymentID uuid.UUID, approvedAt time.Time) error
	// MarkRejected stamps the entry rejected.
	MarkRejected(ctx context.Context, studentID, courseID, paymentID uuid.UUID, rejectedAt time.Time) error
	// GrantAccess flips the access flag; granting twice is a no-op.
	GrantAccess(ctx context.Context, studentID, courseID uuid.UUID) error
}

type postgresEnrollmentStore struct {
	db *sql.DB
}

// NewEnrollmentStore returns a Postgres-backed EnrollmentStore.
func NewEnrollmentStore(db *sql.DB) EnrollmentStore {
	return &postgresEnrollmentStore{db: db}
}

func (s *postgresEnrollmentStore) Get(ctx context.Context, studentID, courseID uuid.UUID) (*models.Enrollment, error) {
	query := `
		SELECT student_id, course_id, payment_status, has_access, approved_at, rejected_at,
			proof_ref, payment_id, created_at, updated_at
		FROM enrollments
		WHERE student_id = $1 AND course_id = $2`

	var e models.Enrollment
	var approvedAt, rejectedAt sql.NullTime
	var proofRef sql.NullString
	var paymentID uuid.NullUUID

	err := s.db.QueryRowContext(ctx, query, studentID, courseID).Scan(
		&e.StudentID, &e.CourseID, &e.PaymentStatus, &e.HasAccess,
		&approvedAt, &rejectedAt, &proofRef, &paymentID, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		t := approvedAt.Time
		e.ApprovedAt = &t
	}
	if rejectedAt.Valid {
		t := rejectedAt.Time
		e.RejectedAt = &t
	}
	if proofRef.Valid {
		e.ProofRef = &proofRef.String
	}
	if paymentID.Valid {
		id := paymentID.UUID
		e.PaymentID = &id
	}
	return &e, nil
}

func (s *postgresEnrollmentStore) UpsertPending(ctx context.Context, studentID, courseID, paymentID uuid.UUID, proofRef string) error {
	query := `
		INSERT INTO enrollments (student_id, course_id, payment_status, proof_ref, payment_id)
		VALUES ($1, $2, 'pending', $3, $4)
		ON CONFLICT (student_id, course_id) DO UPDATE
		SET payment_status = 'pending',
			proof_ref = EXCLUDED.proof_ref,
			payment_id = EXCLUDED.payment_id,
			rejected_at = NULL,
			updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, studentID, courseID, proofRef, paymentID)
	return err
}

func (s *postgresEnrollmentStore) MarkApproved(ctx context.Context, studentID, courseID, paymentID uuid.UUID, approvedAt time.Time) error {
	// COALESCE keeps the first approval timestamp when the step is retried.
	query := `
		INSERT INTO enrollments (student_id, course_id, payment_status, approved_at, payment_id)
		VALUES ($1, $2, 'accepted', $3, $4)
		ON CONFLICT (student_id, course_id) DO UPDATE
		SET payment_status = 'accepted',
			approved_at = COALESCE(enrollments.approved_at, EXCLUDED.approved_at),
			payment_id = EXCLUDED.payment_id,
			updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, studentID, courseID, approvedAt, paymentID)
	return err
}

func (s *postgresEnrollmentStore) MarkRejected(ctx context.Context, studentID, courseID, paymentID uuid.UUID, rejectedAt time.Time) error {
	query := `
		INSERT INTO enrollments (student_id, course_id, payment_status, rejected_at, payment_id)
		VALUES ($1, $2, 'rejected', $3, $4)
		ON CONFLICT (student_id, course_id) DO UPDATE
		SET payment_status = 'rejected',
			rejected_at = COALESCE(enrollments.rejected_at, EXCLUDED.rejected_at),
			payment_id = EXCLUDED.payment_id,
			updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, studentID, courseID, rejectedAt, paymentID)
	return err
}

func (s *postgresEnrollmentStore) GrantAccess(ctx context.Context, studentID, courseID uuid.UUID) error {
	query := `
		UPDATE enrollments
		SET has_access = TRUE, updated_at = NOW()
		WHERE student_id = $1 AND course_id = $2 AND has_access = FALSE`
	_, err := s.db.ExecContext(ctx, query, studentID, courseID)
	return err
}
