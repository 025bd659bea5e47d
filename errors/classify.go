package errors

import (
	"database/sql"
	"strings"

	"coursehub/config"

	"github.com/lib/pq"
)

// Constraint names created by the db package. The classifier keys off
// these to turn a raw uniqueness violation into the same stable code the
// pre-persistence guard would have produced.
const (
	ConstraintReferenceUnique = "payments_reference_key"
	ConstraintSinglePending   = "payments_single_pending_idx"
)

// Classify maps a low-level storage error onto the stable taxonomy.
// Errors that are already classified pass through unchanged. Anything
// unrecognized becomes a generic StorageError; the underlying message is
// attached outside production only.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if As(err, &appErr) {
		return err
	}

	if Is(err, sql.ErrNoRows) {
		return E(NotFound, "record not found", err)
	}

	var pqErr *pq.Error
	if As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return classifyUnique(pqErr)
		case "23502": // not_null_violation
			return E(Invalid, CodeValidation, "missing required field",
				map[string]string{pqErr.Column: "is required"}, err)
		case "23514": // check_violation
			return E(Invalid, CodeValidation, "field failed a validation constraint",
				map[string]string{fieldFromConstraint(pqErr.Constraint): pqErr.Message}, err)
		case "23503": // foreign_key_violation
			return E(NotFound, "referenced record does not exist", err)
		case "22P02": // invalid_text_representation (malformed uuid and the like)
			return E(Invalid, CodeInvalidIdentifier, "malformed identifier", err)
		}
	}

	msg := "storage operation failed"
	if !config.IsProduction() {
		msg = msg + ": " + err.Error()
	}
	return E(Internal, CodeStorageError, msg, err)
}

// classifyUnique identifies which uniqueness constraint fired and emits
// the matching duplicate code with a usable suggestion.
func classifyUnique(pqErr *pq.Error) error {
	switch pqErr.Constraint {
	case ConstraintReferenceUnique:
		return E(Conflict, CodeDuplicateReference,
			"transaction reference already used; supply a different reference or omit it to have one generated", pqErr)
	case ConstraintSinglePending:
		return E(Conflict, CodeDuplicatePendingPayment,
			"a pending payment already exists for this student and course; wait for review instead of resubmitting", pqErr)
	}

	field := fieldFromConstraint(pqErr.Constraint)
	return E(Conflict, "duplicate value for "+field,
		map[string]interface{}{"field": field}, pqErr)
}

// fieldFromConstraint guesses the offending column from a conventional
// <table>_<column>_key constraint name.
func fieldFromConstraint(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	name = strings.TrimSuffix(name, "_idx")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	if name == "" {
		return "unknown"
	}
	return name
}
