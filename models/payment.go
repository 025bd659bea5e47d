package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the explicit state of a payment's lifecycle.
// pending is the only non-terminal state.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentAccepted PaymentStatus = "accepted"
	PaymentRejected PaymentStatus = "rejected"
)

// Valid reports whether s is a known status value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentAccepted, PaymentRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentAccepted || s == PaymentRejected
}

// Transition validates a state change from s to target. Only
// pending → accepted and pending → rejected are legal.
func (s PaymentStatus) Transition(target PaymentStatus) error {
	if !target.Valid() {
		return fmt.Errorf("unknown payment status %q", target)
	}
	if target == PaymentPending {
		return fmt.Errorf("cannot transition back to pending")
	}
	if s.Terminal() {
		return fmt.Errorf("payment is already %s", s)
	}
	return nil
}

// Payment is one submitted proof-of-transfer attempt tied to a student and
// a course. Core identity fields are immutable after creation; only the
// status/decision fields change, exactly once.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	CourseID  uuid.UUID `json:"course_id"`

	// Snapshot captured at submission time so historical payments stay
	// auditable even if the student later edits their profile.
	StudentName  string `json:"student_name"`
	StudentPhone string `json:"student_phone"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	// Globally unique when present; generated when the payer supplies none.
	TransactionReference *string `json:"transaction_reference,omitempty"`

	// Opaque pointer to the externally stored proof image.
	ScreenshotRef string `json:"screenshot_ref"`

	Status          PaymentStatus `json:"status"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
	DecidedBy       *string       `json:"decided_by,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentResponse is the structured payment summary for API responses
type PaymentResponse struct {
	ID                   string  `json:"id"`
	StudentID            string  `json:"student_id"`
	CourseID             string  `json:"course_id"`
	StudentName          string  `json:"student_name"`
	StudentPhone         string  `json:"student_phone"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
	TransactionReference string  `json:"transaction_reference,omitempty"`
	Status               string  `json:"status"`
	DecidedAt            *string `json:"decided_at,omitempty"`
	DecidedBy            *string `json:"decided_by,omitempty"`
	RejectionReason      *string `json:"rejection_reason,omitempty"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// ToResponse converts Payment to PaymentResponse with formatted timestamps
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID.String(),
		StudentID:       p.StudentID.String(),
		CourseID:        p.CourseID.String(),
		StudentName:     p.StudentName,
		StudentPhone:    p.StudentPhone,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		DecidedBy:       p.DecidedBy,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
	if p.TransactionReference != nil {
		resp.TransactionReference = *p.TransactionReference
	}
	if p.DecidedAt != nil {
		formatted := p.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &formatted
	}
	return resp
}
