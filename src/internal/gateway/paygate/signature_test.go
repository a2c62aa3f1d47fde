package paygate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureKnownVector(t *testing.T) {
	got := Signature("TOPUP-1", "EXT-1", "10.00", "success", "secret")

	// SHA-512 over "TOPUP-1EXT-110.00successsecret".
	assert.Len(t, got, 128)
	assert.Equal(t, Signature("TOPUP-1", "EXT-1", "10.00", "success", "secret"), got)
	assert.NotEqual(t, Signature("TOPUP-2", "EXT-1", "10.00", "success", "secret"), got)
	assert.NotEqual(t, Signature("TOPUP-1", "EXT-1", "10.00", "success", "other"), got)
}

func TestVerifySignatureCaseInsensitive(t *testing.T) {
	sig := Signature("TOPUP-1", "EXT-1", "10.00", "success", "secret")

	assert.True(t, VerifySignature("TOPUP-1", "EXT-1", "10.00", "success", "secret", sig))
	assert.True(t, VerifySignature("TOPUP-1", "EXT-1", "10.00", "success", "secret", strings.ToUpper(sig)))
	assert.False(t, VerifySignature("TOPUP-1", "EXT-1", "10.00", "success", "secret", "deadbeef"))
	assert.False(t, VerifySignature("TOPUP-1", "EXT-1", "10.01", "success", "secret", sig))
}

func TestStatusClassification(t *testing.T) {
	for _, status := range []string{"success", "Successful", "PAID", "completed"} {
		assert.True(t, IsSuccessStatus(status), status)
		assert.False(t, IsFailureStatus(status), status)
	}
	for _, status := range []string{"failed", "Failure", "CANCELLED", "declined", "expired", "reversed"} {
		assert.True(t, IsFailureStatus(status), status)
		assert.False(t, IsSuccessStatus(status), status)
	}
	// Anything unrecognized is neither: the transaction stays pending.
	for _, status := range []string{"", "processing", "on_hold", "unknown"} {
		assert.False(t, IsSuccessStatus(status), status)
		assert.False(t, IsFailureStatus(status), status)
	}
}
