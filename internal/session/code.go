package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the number of characters in a session code.
	CodeLength = 6
	// CodeAlphabet is the set of characters a session code is drawn from.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator produces candidate session codes.
type CodeGenerator func() (string, error)

// GenerateCode returns a random [CodeLength] character code over [CodeAlphabet].
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	b := make([]byte, CodeLength)

	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("session: failed to generate code: %w", err)
		}
		b[i] = CodeAlphabet[n.Int64()]
	}

	return string(b), nil
}

// ValidCode reports whether code has the shape of a generated session code.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
