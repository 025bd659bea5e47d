package db

import (
	"coursehub/config"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	studentTable := `
	CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);`

	adminTable := `
	CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL
	);`

	courseTable := `
	CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		currency TEXT NOT NULL DEFAULT 'USD',
		enrolled_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);`

	paymentTable := `
	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL,
		course_id UUID NOT NULL,
		student_name TEXT NOT NULL,
		student_phone TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		currency TEXT NOT NULL DEFAULT 'USD',
		transaction_reference TEXT,
		screenshot_ref TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_at TIMESTAMPTZ,
		decided_by TEXT,
		rejection_reason TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),

		CONSTRAINT payments_reference_key UNIQUE (transaction_reference),

		CONSTRAINT fk_payment_student
			FOREIGN KEY (student_id)
			REFERENCES students(id)
			ON DELETE CASCADE,

		CONSTRAINT fk_payment_course
			FOREIGN KEY (course_id)
			REFERENCES courses(id)
			ON DELETE CASCADE
	);`

	// Postgres treats NULLs as distinct, so payments without a reference do
	// not collide on payments_reference_key. The partial index below is the
	// store-level enforcement of the single-pending invariant: the guard's
	// pre-check only narrows the race window.
	singlePendingIndex := `
	CREATE UNIQUE INDEX IF NOT EXISTS payments_single_pending_idx
		ON payments (student_id, course_id)
		WHERE status = 'pending';`

	enrollmentTable := `
	CREATE TABLE IF NOT EXISTS enrollments (
		student_id UUID NOT NULL,
		course_id UUID NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		has_access BOOLEAN NOT NULL DEFAULT FALSE,
		approved_at TIMESTAMPTZ,
		rejected_at TIMESTAMPTZ,
		proof_ref TEXT,
		payment_id UUID,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),

		PRIMARY KEY (student_id, course_id),

		CONSTRAINT fk_enrollment_student
			FOREIGN KEY (student_id)
			REFERENCES students(id)
			ON DELETE CASCADE,

		CONSTRAINT fk_enrollment_course
			FOREIGN KEY (course_id)
			REFERENCES courses(id)
			ON DELETE CASCADE
	);`

	rosterTable := `
	CREATE TABLE IF NOT EXISTS course_roster (
		course_id UUID NOT NULL,
		student_id UUID NOT NULL,
		granted_at TIMESTAMPTZ DEFAULT NOW(),

		PRIMARY KEY (course_id, student_id),

		CONSTRAINT fk_roster_course
			FOREIGN KEY (course_id)
			REFERENCES courses(id)
			ON DELETE CASCADE
	);`

	notificationTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		recipient_id UUID NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		related_payment_id UUID,
		course_id UUID,
		amount NUMERIC(12,2),
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);`

	dlqTable := `
	CREATE TABLE IF NOT EXISTS dlq_messages (
		message_id UUID PRIMARY KEY,
		topic TEXT NOT NULL,
		key TEXT,
		value BYTEA,
		error_message TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		max_retries INTEGER NOT NULL DEFAULT 5,
		last_retry_at TIMESTAMPTZ,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		resolved_at TIMESTAMPTZ,
		notes TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);`

	statements := []struct {
		name string
		stmt string
	}{
		{"students", studentTable},
		{"admins", adminTable},
		{"courses", courseTable},
		{"payments", paymentTable},
		{"payments_single_pending_idx", singlePendingIndex},
		{"enrollments", enrollmentTable},
		{"course_roster", rosterTable},
		{"notifications", notificationTable},
		{"dlq_messages", dlqTable},
	}

	for _, s := range statements {
		if _, err := DB.Exec(s.stmt); err != nil {
			return fmt.Errorf("error creating %s: %w", s.name, err)
		}
	}

	// Seed a default admin so the review queue has a recipient on first boot
	if _, err := DB.Exec(`INSERT INTO admins (id, name, email)
		SELECT gen_random_uuid(), 'Platform Admin', 'admin@coursehub.local'
		WHERE NOT EXISTS (SELECT 1 FROM admins)`); err != nil {
		log.Println("Warning: Error seeding default admin:", err)
	}

	return nil
}
