package repository

import (
	"context"
	"database/sql"

	"coursehub/models"

	"github.com/google/uuid"
)

// CourseStore provides the course lookups the engine needs plus the
// course-side roster aggregate. Roster membership is additive.
type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	// AddToRoster inserts the student into the course roster. Returns true
	// only when the membership is new, so the enrolled counter is bumped
	// exactly once per student.
	AddToRoster(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
	IncrementEnrolled(ctx context.Context, courseID uuid.UUID) error
	IsOnRoster(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

type postgresCourseStore struct {
	db *sql.DB
}

// NewCourseStore returns a Postgres-backed CourseStore.
func NewCourseStore(db *sql.DB) CourseStore {
	return &postgresCourseStore{db: db}
}

func (s *postgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `
		SELECT id, title, description, price, currency, enrolled_count, is_active, created_at, updated_at
		FROM courses
		WHERE id = $1`

	var c models.Course
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &description, &c.Price, &c.Currency,
		&c.EnrolledCount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	return &c, nil
}

func (s *postgresCourseStore) AddToRoster(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO course_roster (course_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, student_id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, courseID, studentID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *postgresCourseStore) IncrementEnrolled(ctx context.Context, courseID uuid.UUID) error {
	query := `UPDATE courses SET enrolled_count = enrolled_count + 1, updated_at = NOW() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, courseID)
	return err
}

func (s *postgresCourseStore) IsOnRoster(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_roster WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID).Scan(&exists)
	return exists, err
}
