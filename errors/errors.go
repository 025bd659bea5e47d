package errors

import (
	// Go internal packages
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Error defines a standard application error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message"`
	// Per-field validation messages, populated for CodeValidation errors.
	Fields map[string]string `json:"fields,omitempty"`
	// Additional machine-readable context (conflicting payment id,
	// current status, decision time and the like).
	Meta map[string]interface{} `json:"meta,omitempty"`
	// Wrapped underlying error.
	WrappedErr error `json:"-"`
}

// Error returns the string representation of the error message.
func (e *Error) Error() string {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(e)
	return buf.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// NewError returns standard go error with given string
func NewError(e string) error {
	return errors.New(e)
}

// Kind defines the kind or class of an error.
type Kind uint8

// Transport agnostic error "kinds"
const (
	Other        Kind = iota // Unclassified error
	Internal                 // Internal error
	Conflict                 // Conflict when an entity already exists
	Invalid                  // Invalid input, validation error etc
	NotFound                 // Entity does not exist
	Unauthorized             // Unauthorized access
	Forbidden                // Forbidden access
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal error"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "entity not found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unclassified error"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Code is a stable, caller-facing error code. Clients branch on codes,
// not on messages or Go types.
type Code string

const (
	CodeValidation              Code = "ValidationError"
	CodeCourseNotFound          Code = "CourseNotFound"
	CodeAlreadyEnrolled         Code = "AlreadyEnrolled"
	CodeDuplicatePendingPayment Code = "DuplicatePendingPayment"
	CodeAmountMismatch          Code = "AmountMismatch"
	CodeDuplicateReference      Code = "DuplicateReference"
	CodeScreenshotRequired      Code = "ScreenshotRequired"
	CodeUploadFailed            Code = "UploadFailed"
	CodePaymentNotFound         Code = "PaymentNotFound"
	CodeAlreadyProcessed        Code = "AlreadyProcessed"
	CodeInvalidStatusRequested  Code = "InvalidStatusRequested"
	CodeInvalidIdentifier       Code = "InvalidIdentifier"
	CodeStorageError            Code = "StorageError"
)

// E builds an *Error from its arguments: a Kind, a Code, a message string,
// a wrapped error, field details or meta context, in any order.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Code:
			e.Code = arg
		case map[string]string:
			e.Fields = arg
		case map[string]interface{}:
			e.Meta = arg
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	return e
}

// CodeOf extracts the stable code from err, or the empty Code if err
// is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewValidationError reports one or more malformed/missing fields.
func NewValidationError(fields map[string]string) error {
	return E(Invalid, CodeValidation, "validation failed", fields)
}

// NewAlreadyProcessed reports an attempted transition out of a terminal
// state, carrying the current status and decision time for the caller.
func NewAlreadyProcessed(status string, decidedAt *time.Time) error {
	meta := map[string]interface{}{"current_status": status}
	if decidedAt != nil {
		meta["decided_at"] = decidedAt.UTC().Format(time.RFC3339)
	}
	return E(Conflict, CodeAlreadyProcessed, "payment has already been processed", meta)
}

// NewDuplicateReference reports a transaction reference already claimed by
// another payment. Only the conflicting payment id is exposed.
func NewDuplicateReference(conflictingPaymentID string) error {
	return E(Conflict, CodeDuplicateReference, "transaction reference already used",
		map[string]interface{}{"conflicting_payment_id": conflictingPaymentID})
}

// NewDuplicatePendingPayment reports an existing pending payment for the
// same student/course pair so the caller can poll instead of resubmitting.
func NewDuplicatePendingPayment(paymentID string, submittedAt time.Time) error {
	return E(Conflict, CodeDuplicatePendingPayment, "a pending payment already exists for this course",
		map[string]interface{}{
			"pending_payment_id": paymentID,
			"submitted_at":       submittedAt.UTC().Format(time.RFC3339),
		})
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(msg string) error {
	return E(Internal, msg)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string) error {
	return E(NotFound, msg)
}

// NewInvalidParamsError creates a new invalid parameters error
func NewInvalidParamsError(msg string) error {
	return E(Invalid, msg)
}

var (
	As = errors.As
	Is = errors.Is
)
