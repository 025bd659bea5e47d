package services_test

import (
	"strings"
	"testing"

	"coursehub/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTransactionReferenceFormat(t *testing.T) {
	ref := services.GenerateTransactionReference("+919876543210")

	parts := strings.SplitN(ref, "_", 3)
	require.Len(t, parts, 3, "reference should be PREFIX_timestamp_random")
	assert.Equal(t, "TXN", parts[0])
	assert.NotEmpty(t, parts[1])
	// 6 random chars plus the last 4 phone digits
	assert.Len(t, parts[2], 10)
	assert.True(t, strings.HasSuffix(ref, "3210"))
}

func TestGenerateTransactionReferenceShortPhone(t *testing.T) {
	ref := services.GenerateTransactionReference("+12")
	assert.True(t, strings.HasSuffix(ref, "12"))

	// No digits at all still yields a well-formed reference
	ref = services.GenerateTransactionReference("")
	parts := strings.SplitN(ref, "_", 3)
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 6)
}

func TestGenerateTransactionReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref := services.GenerateTransactionReference("+919876543210")
		assert.False(t, seen[ref], "duplicate reference generated: %s", ref)
		seen[ref] = true
	}
}
