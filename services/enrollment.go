package services

import (
	"context"
	"fmt"

	"coursehub/models"
	"coursehub/repository"
)

// EnrollmentSyncer propagates a payment's status into the student-side
// enrollment entry and the course-side roster. Each step is individually
// idempotent, so a crashed pass can be re-run against the authoritative
// payment record without corrupting state.
type EnrollmentSyncer struct {
	enrollments repository.EnrollmentStore
	courses     repository.CourseStore
}

// NewEnrollmentSyncer creates a new EnrollmentSyncer instance
func NewEnrollmentSyncer(enrollments repository.EnrollmentStore, courses repository.CourseStore) *EnrollmentSyncer {
	return &EnrollmentSyncer{enrollments: enrollments, courses: courses}
}

// SyncDecision applies the enrollment/roster side effects of a decided
// payment. It is called after the status transition committed and may be
// re-invoked to repair a partially applied pass.
func (s *EnrollmentSyncer) SyncDecision(ctx context.Context, p *models.Payment) error {
	if p.DecidedAt == nil {
		return fmt.Errorf("payment %s has no decision timestamp", p.ID)
	}

	switch p.Status {
	case models.PaymentAccepted:
		return s.syncAccepted(ctx, p)
	case models.PaymentRejected:
		// Rejection touches only the student-side entry; roster and access
		// are never revoked by this path.
		return s.enrollments.MarkRejected(ctx, p.StudentID, p.CourseID, p.ID, *p.DecidedAt)
	default:
		return fmt.Errorf("payment %s is not decided (status %s)", p.ID, p.Status)
	}
}

func (s *EnrollmentSyncer) syncAccepted(ctx context.Context, p *models.Payment) error {
	// (a) Mark the enrollment entry approved, backfilling it if the student
	// record somehow lacks one.
	if err := s.enrollments.MarkApproved(ctx, p.StudentID, p.CourseID, p.ID, *p.DecidedAt); err != nil {
		return fmt.Errorf("error marking enrollment approved: %w", err)
	}

	// (b) Add the student to the course roster; the counter is bumped only
	// when the membership is new so a retry cannot double-count.
	added, err := s.courses.AddToRoster(ctx, p.CourseID, p.StudentID)
	if err != nil {
		return fmt.Errorf("error adding student to roster: %w", err)
	}
	if added {
		if err := s.courses.IncrementEnrolled(ctx, p.CourseID); err != nil {
			return fmt.Errorf("error incrementing enrolled count: %w", err)
		}
	}

	// (c) Grant content access on the student's entry.
	if err := s.enrollments.GrantAccess(ctx, p.StudentID, p.CourseID); err != nil {
		return fmt.Errorf("error granting course access: %w", err)
	}
	return nil
}
