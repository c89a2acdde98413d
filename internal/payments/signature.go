package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
// Gateway ids are restricted to [A-Za-z0-9_], so the pipe needs no escaping.
func Sign(secret []byte, orderID, paymentID string) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature compares in constant time. A malformed signature is
// simply a mismatch.
func VerifySignature(secret []byte, orderID, paymentID, signature string) (bool, error) {
	expected, err := Sign(secret, orderID, paymentID)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
