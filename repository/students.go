package repository

import (
	"context"
	"database/sql"

	"coursehub/models"

	"github.com/google/uuid"
)

// StudentStore provides the student lookups and the snapshot upsert the
// submission path relies on.
type StudentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	// Upsert records the submitted name/phone against the student account so
	// the payment's foreign key is always satisfiable, even when the account
	// system created the student out of band.
	Upsert(ctx context.Context, student *models.Student) error
}

// AdminStore lists the administrators that receive submission alerts.
type AdminStore interface {
	List(ctx context.Context) ([]models.Admin, error)
}

type postgresStudentStore struct {
	db *sql.DB
}

// NewStudentStore returns a Postgres-backed StudentStore.
func NewStudentStore(db *sql.DB) StudentStore {
	return &postgresStudentStore{db: db}
}

func (s *postgresStudentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM students WHERE id = $1`

	var st models.Student
	var email, phone sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&st.ID, &st.Name, &email, &phone, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	st.Email = email.String
	st.Phone = phone.String
	return &st, nil
}

func (s *postgresStudentStore) Upsert(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, name, email, phone)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, students.phone),
			updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, student.ID, student.Name, student.Email, student.Phone)
	return err
}

type postgresAdminStore struct {
	db *sql.DB
}

// NewAdminStore returns a Postgres-backed AdminStore.
func NewAdminStore(db *sql.DB) AdminStore {
	return &postgresAdminStore{db: db}
}

func (s *postgresAdminStore) List(ctx context.Context) ([]models.Admin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM admins ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []models.Admin{}
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
