package paygate

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Signature is the digest the gateway sends with every webhook: SHA-512 over
// the concatenation reference + externalreference + amount + status + secret,
// hex encoded.
func Signature(reference, externalRef, amount, status, secret string) string {
	sum := sha512.Sum512([]byte(reference + externalRef + amount + status + secret))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares case-insensitively; gateways disagree on hex case.
func VerifySignature(reference, externalRef, amount, status, secret, got string) bool {
	want := Signature(reference, externalRef, amount, status, secret)
	return strings.EqualFold(want, got)
}

// IsSuccessStatus reports whether a gateway status means the payment settled.
func IsSuccessStatus(status string) bool {
	switch strings.ToLower(status) {
	case "success", "successful", "paid", "completed":
		return true
	}
	return false
}

// IsFailureStatus reports whether a gateway status is terminally failed.
func IsFailureStatus(status string) bool {
	switch strings.ToLower(status) {
	case "failed", "failure", "cancelled", "declined", "expired", "reversed":
		return true
	}
	return false
}
