package services

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"coursehub/config"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateTransactionReference produces a human-shareable reference of the
// form {PREFIX}_{timestamp}_{random-base36}{phone-suffix} for submissions
// that carry no payer-supplied reference. The timestamp plus random
// component makes collisions practically impossible, but uniqueness is
// still enforced by the store's constraint: two generations in the same
// millisecond could in principle collide.
func GenerateTransactionReference(phone string) string {
	prefix := config.AppConfig.ReferencePrefix
	if prefix == "" {
		prefix = "TXN"
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)

	return prefix + "_" + timestamp + "_" + randomBase36(6) + phoneSuffix(phone)
}

// randomBase36 returns n cryptographically random base36 characters.
func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a timestamp-derived character rather than panic.
			b.WriteByte(base36Alphabet[time.Now().UnixNano()%36])
			continue
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String()
}

// phoneSuffix extracts up to the last four digits of the phone number.
func phoneSuffix(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}
