package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment is the per-student, per-course participation record. It is
// created on the first payment submission, mutated on every status
// transition and never deleted, so payment history survives for audit
// even if the payment record itself were purged.
type Enrollment struct {
	StudentID     uuid.UUID     `json:"student_id"`
	CourseID      uuid.UUID     `json:"course_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	HasAccess     bool          `json:"has_access"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	RejectedAt    *time.Time    `json:"rejected_at,omitempty"`
	ProofRef      *string       `json:"proof_ref,omitempty"`
	PaymentID     *uuid.UUID    `json:"payment_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
