package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"coursehub/errors"
	"coursehub/models"
	"coursehub/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionEnv struct {
	payments    *mockPaymentStore
	enrollments *mockEnrollmentStore
	courses     *mockCourseStore
	students    *mockStudentStore
	screenshots *mockScreenshotStore
	notifier    *mockNotifier
	svc         *services.PaymentService

	course    *models.Course
	studentID uuid.UUID
}

func newSubmissionEnv(t *testing.T) *submissionEnv {
	t.Helper()

	env := &submissionEnv{
		payments:    newMockPaymentStore(),
		enrollments: newMockEnrollmentStore(),
		courses:     newMockCourseStore(),
		students:    newMockStudentStore(),
		screenshots: &mockScreenshotStore{},
		notifier:    &mockNotifier{},
		studentID:   uuid.New(),
	}

	env.course = &models.Course{
		ID:       uuid.New(),
		Title:    "Distributed Systems",
		Price:    499.00,
		Currency: "USD",
		IsActive: true,
	}
	env.courses.courses[env.course.ID] = env.course

	env.svc = services.NewPaymentService(env.payments, env.enrollments, env.courses,
		env.students, env.screenshots, env.notifier)
	return env
}

func (env *submissionEnv) validRequest() services.SubmitPaymentRequest {
	return services.SubmitPaymentRequest{
		StudentID:          env.studentID.String(),
		CourseID:           env.course.ID.String(),
		StudentName:        "Priya Sharma",
		StudentPhone:       "+919876543210",
		StudentEmail:       "priya@example.com",
		Amount:             499.00,
		Screenshot:         strings.NewReader("fake-image-bytes"),
		ScreenshotFilename: "proof.png",
	}
}

func TestSubmitPaymentSuccess(t *testing.T) {
	env := newSubmissionEnv(t)

	result, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, 499.00, result.Amount)
	assert.Equal(t, "USD", result.Currency)
	assert.True(t, strings.HasPrefix(result.Reference, "TXN_"), "generated reference should carry the prefix")
	assert.True(t, strings.HasSuffix(result.Reference, "3210"), "generated reference should end with the phone suffix")

	// Payment persisted as pending
	id, err := uuid.Parse(result.PaymentID)
	require.NoError(t, err)
	stored, err := env.payments.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
	assert.Equal(t, "Priya Sharma", stored.StudentName)
	assert.NotEmpty(t, stored.ScreenshotRef)

	// Enrollment entry mirrors the pending payment
	enrollment, err := env.enrollments.Get(context.Background(), env.studentID, env.course.ID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, models.PaymentPending, enrollment.PaymentStatus)
	assert.False(t, enrollment.HasAccess)

	// Student account upserted, screenshot stored, notification fired
	_, err = env.students.GetByID(context.Background(), env.studentID)
	assert.NoError(t, err)
	assert.Len(t, env.screenshots.saved, 1)
	assert.Len(t, env.notifier.submitted, 1)
}

func TestSubmitPaymentKeepsSuppliedReference(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.Reference = "UPI-REF-12345"

	result, err := env.svc.SubmitPayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "UPI-REF-12345", result.Reference)
}

func TestSubmitPaymentScreenshotRequired(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.Screenshot = nil

	_, err := env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeScreenshotRequired, errors.CodeOf(err))
	assert.Empty(t, env.notifier.submitted)
}

func TestSubmitPaymentValidationErrors(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.StudentName = ""
	req.StudentPhone = "not-a-phone"
	req.Amount = -5

	_, err := env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	var appErr *errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "student_name")
	assert.Contains(t, appErr.Fields, "student_phone")
	assert.Contains(t, appErr.Fields, "amount")
}

func TestSubmitPaymentInvalidIdentifier(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.CourseID = "not-a-uuid"

	_, err := env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidIdentifier, errors.CodeOf(err))
}

func TestSubmitPaymentCourseNotFound(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.CourseID = uuid.New().String()

	_, err := env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeCourseNotFound, errors.CodeOf(err))
}

func TestSubmitPaymentInactiveCourse(t *testing.T) {
	env := newSubmissionEnv(t)
	env.course.IsActive = false

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeCourseNotFound, errors.CodeOf(err))
}

func TestGuardRejectsAlreadyEnrolled(t *testing.T) {
	env := newSubmissionEnv(t)

	approvedAt := time.Now().UTC()
	require.NoError(t, env.enrollments.MarkApproved(context.Background(),
		env.studentID, env.course.ID, uuid.New(), approvedAt))

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeAlreadyEnrolled, errors.CodeOf(err))
}

func TestGuardRejectsDuplicatePending(t *testing.T) {
	env := newSubmissionEnv(t)

	first, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)

	_, err = env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicatePendingPayment, errors.CodeOf(err))

	var appErr *errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, first.PaymentID, appErr.Meta["pending_payment_id"])
	assert.Contains(t, appErr.Meta, "submitted_at")
}

func TestGuardRejectsAmountMismatch(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.Amount = 450.00

	_, err := env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeAmountMismatch, errors.CodeOf(err))

	var appErr *errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 499.00, appErr.Meta["expected_amount"])
}

func TestGuardRejectsDuplicateReference(t *testing.T) {
	env := newSubmissionEnv(t)

	req := env.validRequest()
	req.Reference = "SHARED-REF"
	first, err := env.svc.SubmitPayment(context.Background(), req)
	require.NoError(t, err)

	// A different student reusing the reference is refused even though the
	// pending-pair guard does not apply.
	other := env.validRequest()
	other.StudentID = uuid.New().String()
	other.Reference = "SHARED-REF"

	_, err = env.svc.SubmitPayment(context.Background(), other)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicateReference, errors.CodeOf(err))

	var appErr *errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, first.PaymentID, appErr.Meta["conflicting_payment_id"])
}

func TestGuardOrderPendingBeforeAmount(t *testing.T) {
	env := newSubmissionEnv(t)

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)

	// Wrong amount AND a pending duplicate: the pending check fires first.
	req := env.validRequest()
	req.Amount = 1.00

	_, err = env.svc.SubmitPayment(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDuplicatePendingPayment, errors.CodeOf(err))
}

func TestGuardOrderEnrolledBeforePending(t *testing.T) {
	env := newSubmissionEnv(t)

	require.NoError(t, env.enrollments.MarkApproved(context.Background(),
		env.studentID, env.course.ID, uuid.New(), time.Now().UTC()))

	// Seed a stray pending payment for the same pair; enrollment wins.
	pending := &models.Payment{
		ID:        uuid.New(),
		StudentID: env.studentID,
		CourseID:  env.course.ID,
		Status:    models.PaymentPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, env.payments.Create(context.Background(), pending))

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeAlreadyEnrolled, errors.CodeOf(err))
}

func TestResubmissionAfterRejectionAllowed(t *testing.T) {
	env := newSubmissionEnv(t)

	first, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)

	// Reject the first attempt.
	id, err := uuid.Parse(first.PaymentID)
	require.NoError(t, err)
	_, err = env.payments.MarkDecided(context.Background(), id, models.PaymentRejected, "admin", nil, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, env.enrollments.MarkRejected(context.Background(),
		env.studentID, env.course.ID, id, time.Now().UTC()))

	second, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentID, second.PaymentID)

	enrollment, err := env.enrollments.Get(context.Background(), env.studentID, env.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, enrollment.PaymentStatus)
	assert.Nil(t, enrollment.RejectedAt)
}

func TestSubmitPaymentUploadFailure(t *testing.T) {
	env := newSubmissionEnv(t)
	env.screenshots.saveErr = errors.NewError("disk full")

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeUploadFailed, errors.CodeOf(err))

	// Nothing persisted, nothing notified
	assert.Empty(t, env.payments.payments)
	assert.Empty(t, env.notifier.submitted)
}

func TestCheckReferenceAvailable(t *testing.T) {
	env := newSubmissionEnv(t)

	available, err := env.svc.CheckReferenceAvailable(context.Background(), "FRESH-REF")
	require.NoError(t, err)
	assert.True(t, available)

	req := env.validRequest()
	req.Reference = "FRESH-REF"
	_, err = env.svc.SubmitPayment(context.Background(), req)
	require.NoError(t, err)

	available, err = env.svc.CheckReferenceAvailable(context.Background(), "FRESH-REF")
	require.NoError(t, err)
	assert.False(t, available)

	_, err = env.svc.CheckReferenceAvailable(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestListPayments(t *testing.T) {
	env := newSubmissionEnv(t)

	_, err := env.svc.SubmitPayment(context.Background(), env.validRequest())
	require.NoError(t, err)

	responses, counters, err := env.svc.ListPayments(context.Background(), listAll())
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, 1, counters.Total)
	assert.Equal(t, 1, counters.Pending)
	assert.Equal(t, "pending", responses[0].Status)
}
