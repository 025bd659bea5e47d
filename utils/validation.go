package utils

import (
	"fmt"
	"regexp"
)

// Email and phone regex patterns
var (
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	PhoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// ValidationRules contains validation configuration
type ValidationRules struct {
	MaxNameLength   int
	MaxReasonLength int
}

// DefaultValidationRules provides default validation constraints
var DefaultValidationRules = ValidationRules{
	MaxNameLength:   100,
	MaxReasonLength: 500,
}

// ValidateEmail checks if email format is valid
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePhone checks if phone is in E.164 format
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !PhoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone format (use E.164 format, e.g., +919876543210)")
	}
	return nil
}

// ValidateName checks if name meets requirements
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > DefaultValidationRules.MaxNameLength {
		return fmt.Errorf("name must be less than %d characters", DefaultValidationRules.MaxNameLength)
	}
	return nil
}

// ValidateReason checks if a rejection reason meets requirements
func ValidateReason(reason string) error {
	if reason != "" && len(reason) > DefaultValidationRules.MaxReasonLength {
		return fmt.Errorf("reason must be less than %d characters", DefaultValidationRules.MaxReasonLength)
	}
	return nil
}
