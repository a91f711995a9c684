// Package signature implements the keyed-hash verification used for client
// payment confirmations and gateway webhooks. Two independent secrets are in
// play: the gateway key secret signs confirmation pairs, the webhook secret
// signs raw webhook bodies.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the hex-encoded HMAC-SHA256 digest of message under secret.
func Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether supplied is the digest of message under secret.
// The comparison is constant-time.
func Verify(secret string, message []byte, supplied string) bool {
	if secret == "" {
		return false
	}
	candidate, err := hex.DecodeString(strings.TrimSpace(supplied))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(message)
	return hmac.Equal(candidate, mac.Sum(nil))
}

// ConfirmationMessage builds the signed message for a client payment
// confirmation.
func ConfirmationMessage(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}
