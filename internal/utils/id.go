package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a 32-char hex identifier for venues and devices.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
