package services

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"coursehub/errors"
	"coursehub/logger"
	"coursehub/models"
	"coursehub/repository"
	"coursehub/utils"

	"github.com/google/uuid"
)

// Notifier is the outbound side channel informed after state-changing
// events. Implementations run asynchronously; their failure never rolls
// back the payment state change.
type Notifier interface {
	PaymentSubmitted(p *models.Payment, course *models.Course)
	PaymentDecided(p *models.Payment, course *models.Course)
}

// PaymentService handles payment submission and the read-side listing.
type PaymentService struct {
	payments    repository.PaymentStore
	enrollments repository.EnrollmentStore
	courses     repository.CourseStore
	students    repository.StudentStore
	screenshots ScreenshotStore
	notifier    Notifier
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(
	payments repository.PaymentStore,
	enrollments repository.EnrollmentStore,
	courses repository.CourseStore,
	students repository.StudentStore,
	screenshots ScreenshotStore,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		payments:    payments,
		enrollments: enrollments,
		courses:     courses,
		students:    students,
		screenshots: screenshots,
		notifier:    notifier,
	}
}

// SubmitPaymentRequest carries one proof-of-transfer submission.
type SubmitPaymentRequest struct {
	StudentID    string
	CourseID     string
	StudentName  string
	StudentPhone string
	StudentEmail string
	Amount       float64
	Currency     string
	// Optional payer-supplied reference; generated when empty.
	Reference string
	// Required proof image.
	Screenshot         io.Reader
	ScreenshotFilename string
}

// SubmitPaymentResult is the success payload of a submission.
type SubmitPaymentResult struct {
	PaymentID   string  `json:"payment_id"`
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submitted_at"`
}

// SubmitPayment runs the duplicate-submission guard, persists the payment
// record, synchronizes the student's enrollment entry and fires the
// submission notifications.
func (s *PaymentService) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*SubmitPaymentResult, error) {
	studentID, courseID, err := s.validateSubmission(&req)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.E(errors.NotFound, errors.CodeCourseNotFound, "course not found")
		}
		return nil, errors.Classify(err)
	}
	if !course.IsActive {
		return nil, errors.E(errors.NotFound, errors.CodeCourseNotFound, "course is not available")
	}

	// Duplicate-submission guard. These pre-checks short-circuit on first
	// failure; the store's uniqueness constraints remain the last line of
	// defense under concurrent double-submission.
	if err := s.runGuard(ctx, studentID, courseID, req.Amount, req.Reference, course); err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = GenerateTransactionReference(req.StudentPhone)
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		ID:                   uuid.New(),
		StudentID:            studentID,
		CourseID:             courseID,
		StudentName:          req.StudentName,
		StudentPhone:         req.StudentPhone,
		Amount:               req.Amount,
		Currency:             currencyOrDefault(req.Currency, course.Currency),
		TransactionReference: &reference,
		Status:               models.PaymentPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// The student snapshot travels with the payment, but the account row
	// must exist for the payment's foreign key.
	student := &models.Student{
		ID:    studentID,
		Name:  req.StudentName,
		Email: req.StudentEmail,
		Phone: req.StudentPhone,
	}
	if err := s.students.Upsert(ctx, student); err != nil {
		return nil, errors.Classify(err)
	}

	// The screenshot must persist before the payment record references it.
	screenshotRef, err := s.screenshots.Save(payment.ID.String(), req.ScreenshotFilename, req.Screenshot)
	if err != nil {
		return nil, errors.E(errors.Internal, errors.CodeUploadFailed, "failed to store payment screenshot", err)
	}
	payment.ScreenshotRef = screenshotRef

	if err := s.payments.Create(ctx, payment); err != nil {
		// A concurrent double-submission loses here: the constraint
		// violation classifies into the same duplicate code the guard
		// would have produced.
		return nil, errors.Classify(err)
	}

	if err := s.enrollments.UpsertPending(ctx, studentID, courseID, payment.ID, screenshotRef); err != nil {
		// The payment record is authoritative; a failed enrollment write is
		// repairable from it and must not fail the accepted submission.
		logger.Error("Error syncing enrollment for payment %s: %v", payment.ID, err)
	}

	s.notifier.PaymentSubmitted(payment, course)

	return &SubmitPaymentResult{
		PaymentID:   payment.ID.String(),
		Reference:   reference,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Status:      string(payment.Status),
		SubmittedAt: payment.CreatedAt.Format(time.RFC3339),
	}, nil
}

// validateSubmission checks field presence/shape and parses identifiers.
func (s *PaymentService) validateSubmission(req *SubmitPaymentRequest) (uuid.UUID, uuid.UUID, error) {
	fields := map[string]string{}

	req.StudentName = strings.TrimSpace(req.StudentName)
	req.StudentPhone = strings.TrimSpace(req.StudentPhone)
	req.Reference = strings.TrimSpace(req.Reference)

	if err := utils.ValidateName(req.StudentName); err != nil {
		fields["student_name"] = err.Error()
	}
	if err := utils.ValidatePhone(req.StudentPhone); err != nil {
		fields["student_phone"] = err.Error()
	}
	if req.StudentEmail != "" {
		if err := utils.ValidateEmail(req.StudentEmail); err != nil {
			fields["student_email"] = err.Error()
		}
	}
	if req.Amount <= 0 {
		fields["amount"] = "must be greater than 0"
	}

	if req.Screenshot == nil {
		return uuid.Nil, uuid.Nil, errors.E(errors.Invalid, errors.CodeScreenshotRequired,
			"a payment screenshot is required")
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.E(errors.Invalid, errors.CodeInvalidIdentifier,
			"malformed student id", err)
	}
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.E(errors.Invalid, errors.CodeInvalidIdentifier,
			"malformed course id", err)
	}

	if len(fields) > 0 {
		return uuid.Nil, uuid.Nil, errors.NewValidationError(fields)
	}
	return studentID, courseID, nil
}

// runGuard executes the ordered duplicate-submission checks.
func (s *PaymentService) runGuard(ctx context.Context, studentID, courseID uuid.UUID, amount float64, reference string, course *models.Course) error {
	// 1. An approved enrollment means the student already owns the course.
	enrollment, err := s.enrollments.Get(ctx, studentID, courseID)
	if err != nil {
		return errors.Classify(err)
	}
	if enrollment != nil && enrollment.PaymentStatus == models.PaymentAccepted {
		return errors.E(errors.Conflict, errors.CodeAlreadyEnrolled,
			"student is already enrolled in this course")
	}

	// 2. A pending payment for the pair must be decided before resubmission.
	pending, err := s.payments.FindPending(ctx, studentID, courseID)
	if err != nil {
		return errors.Classify(err)
	}
	if pending != nil {
		return errors.NewDuplicatePendingPayment(pending.ID.String(), pending.CreatedAt)
	}

	// 3. The amount must equal the course's current price exactly.
	if amount != course.Price {
		return errors.E(errors.Invalid, errors.CodeAmountMismatch,
			"amount does not match the course price",
			map[string]interface{}{"expected_amount": course.Price})
	}

	// 4. A supplied reference must not be claimed by any payment.
	if reference != "" {
		existing, err := s.payments.FindByReference(ctx, reference)
		if err != nil {
			return errors.Classify(err)
		}
		if existing != nil {
			return errors.NewDuplicateReference(existing.ID.String())
		}
	}
	return nil
}

// CheckReferenceAvailable reports whether no payment holds the reference.
func (s *PaymentService) CheckReferenceAvailable(ctx context.Context, reference string) (bool, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return false, errors.NewValidationError(map[string]string{"reference": "is required"})
	}
	existing, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return false, errors.Classify(err)
	}
	return existing == nil, nil
}

// ListPayments returns a page of payment summaries plus aggregate counters.
func (s *PaymentService) ListPayments(ctx context.Context, filter repository.ListFilter) ([]models.PaymentResponse, models.PaymentCounters, error) {
	payments, counters, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, counters, errors.Classify(err)
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	return responses, counters, nil
}

func currencyOrDefault(requested, courseCurrency string) string {
	if requested != "" {
		return strings.ToUpper(requested)
	}
	if courseCurrency != "" {
		return courseCurrency
	}
	return "USD"
}
