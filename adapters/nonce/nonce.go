package nonce

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// valueBytes is the entropy of a nonce before hex encoding
const valueBytes = 32

func generateValue() (string, error) {
	b := make([]byte, valueBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
