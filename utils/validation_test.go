package utils_test

import (
	"strings"
	"testing"

	"coursehub/utils"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, utils.ValidateEmail("priya@example.com"))
	assert.NoError(t, utils.ValidateEmail("first.last+tag@sub.domain.io"))
	assert.Error(t, utils.ValidateEmail(""))
	assert.Error(t, utils.ValidateEmail("not-an-email"))
	assert.Error(t, utils.ValidateEmail("missing@tld"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, utils.ValidatePhone("+919876543210"))
	assert.NoError(t, utils.ValidatePhone("14155552671"))
	assert.Error(t, utils.ValidatePhone(""))
	assert.Error(t, utils.ValidatePhone("0123"))
	assert.Error(t, utils.ValidatePhone("+91-98765-43210"))
	assert.Error(t, utils.ValidatePhone("abc"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, utils.ValidateName("Priya Sharma"))
	assert.Error(t, utils.ValidateName(""))
	assert.Error(t, utils.ValidateName(strings.Repeat("a", 101)))
}

func TestValidateReason(t *testing.T) {
	assert.NoError(t, utils.ValidateReason(""))
	assert.NoError(t, utils.ValidateReason("screenshot is unreadable"))
	assert.Error(t, utils.ValidateReason(strings.Repeat("x", 501)))
}
