package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"coursehub/errors"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/repository"

	"github.com/google/uuid"
)

// Decision values accepted from the admin API.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// DecisionService applies admin accept/reject decisions to pending
// payments, singly or in bulk.
type DecisionService struct {
	payments repository.PaymentStore
	courses  repository.CourseStore
	syncer   *EnrollmentSyncer
	notifier Notifier
}

// NewDecisionService creates a new DecisionService instance
func NewDecisionService(payments repository.PaymentStore, courses repository.CourseStore, syncer *EnrollmentSyncer, notifier Notifier) *DecisionService {
	return &DecisionService{
		payments: payments,
		courses:  courses,
		syncer:   syncer,
		notifier: notifier,
	}
}

// BulkDecisionResult reports how many of the requested payments actually
// changed, so partial application is visible to the caller.
type BulkDecisionResult struct {
	UpdatedCount   int `json:"updated_count"`
	RequestedCount int `json:"requested_count"`
}

// DecidePayment transitions one pending payment to accepted or rejected.
// Exactly one concurrent decider wins; the others observe AlreadyProcessed
// with the current status and decision time, and no side effect is
// re-applied.
func (s *DecisionService) DecidePayment(ctx context.Context, paymentID, decision, decidedBy, reason string) (*models.PaymentResponse, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, errors.E(errors.Invalid, errors.CodeInvalidIdentifier, "malformed payment id", err)
	}

	target, err := statusForDecision(decision)
	if err != nil {
		return nil, err
	}

	payment, err := s.decide(ctx, id, target, decidedBy, reason)
	if err != nil {
		return nil, err
	}

	resp := payment.ToResponse()
	return &resp, nil
}

// BulkDecidePayments applies the single-transition logic to each id.
// Ids referencing missing or already-decided payments are silently
// skipped; one failing record does not abort the others.
func (s *DecisionService) BulkDecidePayments(ctx context.Context, paymentIDs []string, decision, decidedBy, reason string) (*BulkDecisionResult, error) {
	target, err := statusForDecision(decision)
	if err != nil {
		return nil, err
	}

	result := &BulkDecisionResult{RequestedCount: len(paymentIDs)}
	for _, raw := range paymentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			logger.Warn("Bulk decision skipping malformed payment id %q", raw)
			continue
		}
		if _, err := s.decide(ctx, id, target, decidedBy, reason); err != nil {
			code := errors.CodeOf(err)
			if code != errors.CodeAlreadyProcessed && code != errors.CodePaymentNotFound {
				logger.Error("Bulk decision failed for payment %s: %v", id, err)
			}
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}

// RepairPayment re-runs the enrollment/roster synchronization for an
// already-decided payment. Safe to call any number of times; used to
// converge state after a crash between the status write and the
// enrollment writes.
func (s *DecisionService) RepairPayment(ctx context.Context, paymentID string) error {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return errors.E(errors.Invalid, errors.CodeInvalidIdentifier, "malformed payment id", err)
	}

	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.E(errors.NotFound, errors.CodePaymentNotFound, "payment not found")
		}
		return errors.Classify(err)
	}
	if !payment.Status.Terminal() {
		return errors.E(errors.Invalid, "payment is still pending; nothing to repair")
	}

	if err := s.syncer.SyncDecision(ctx, payment); err != nil {
		return errors.Classify(err)
	}
	return nil
}

func (s *DecisionService) decide(ctx context.Context, id uuid.UUID, target models.PaymentStatus, decidedBy, reason string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.E(errors.NotFound, errors.CodePaymentNotFound, "payment not found")
		}
		return nil, errors.Classify(err)
	}

	// Idempotent-read behavior: a repeated call on a decided payment
	// reports the recorded outcome instead of re-applying side effects.
	if err := payment.Status.Transition(target); err != nil {
		return nil, errors.NewAlreadyProcessed(string(payment.Status), payment.DecidedAt)
	}

	var rejectionReason *string
	if target == models.PaymentRejected && strings.TrimSpace(reason) != "" {
		trimmed := strings.TrimSpace(reason)
		rejectionReason = &trimmed
	}

	decidedAt := time.Now().UTC()
	won, err := s.payments.MarkDecided(ctx, id, target, decidedBy, rejectionReason, decidedAt)
	if err != nil {
		return nil, errors.Classify(err)
	}
	if !won {
		// Lost a concurrent race: surface the winner's decision.
		current, err := s.payments.GetByID(ctx, id)
		if err != nil {
			return nil, errors.Classify(err)
		}
		return nil, errors.NewAlreadyProcessed(string(current.Status), current.DecidedAt)
	}

	payment.Status = target
	payment.DecidedAt = &decidedAt
	payment.DecidedBy = &decidedBy
	payment.RejectionReason = rejectionReason
	payment.UpdatedAt = decidedAt

	// The status write is committed; enrollment synchronization failures
	// are logged and repairable, never a reason to report the decision as
	// failed.
	if err := s.syncer.SyncDecision(ctx, payment); err != nil {
		logger.Error("Error syncing enrollment for payment %s: %v", payment.ID, err)
	}

	course, err := s.courses.GetByID(ctx, payment.CourseID)
	if err != nil {
		logger.Error("Error loading course %s for notification: %v", payment.CourseID, err)
		course = &models.Course{ID: payment.CourseID}
	}
	s.notifier.PaymentDecided(payment, course)

	return payment, nil
}

// statusForDecision maps the API decision verb onto the target status.
func statusForDecision(decision string) (models.PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case DecisionAccept:
		return models.PaymentAccepted, nil
	case DecisionReject:
		return models.PaymentRejected, nil
	default:
		return "", errors.E(errors.Invalid, errors.CodeInvalidStatusRequested,
			"decision must be accept or reject")
	}
}
