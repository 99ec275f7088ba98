// Package signature checks that a claimed Razorpay payment result actually
// originated from the gateway for a specific order.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verify computes HMAC-SHA256 over "orderID|paymentID" with secret and
// compares it against the hex-encoded supplied signature in constant time.
// Malformed hex is reported as invalid, never as an error: absence of proof
// of validity is not validity, and the caller always gets a clean boolean.
func Verify(orderID, paymentID, supplied, secret string) bool {
	if orderID == "" || paymentID == "" || supplied == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(supplied)
	if err != nil {
		return false
	}

	return hmac.Equal(expected, got)
}
