package borica

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const nonceBytes = 16

// GenerateNonce returns 16 cryptographically random bytes as 32 uppercase hex characters
func GenerateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
