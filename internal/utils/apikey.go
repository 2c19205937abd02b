package utils

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// NewDeviceKey generates a random 48-character hex API key for a
// scanner device.  The raw key is shown to the operator exactly once;
// only its hash is persisted.
func NewDeviceKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashDeviceKey returns the bcrypt hash of a device key using the
// given cost.
func HashDeviceKey(raw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyDeviceKey safely compares a stored hash with a presented key.
func VerifyDeviceKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
