package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const referenceSuffixLength = 12

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MintReference builds a gateway transaction reference of the form
// <prefix>_<12 random alphanumerics>.
func MintReference(prefix string) (string, error) {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "", fmt.Errorf("reference prefix is required")
	}

	var sb strings.Builder
	sb.Grow(len(trimmed) + 1 + referenceSuffixLength)
	sb.WriteString(trimmed)
	sb.WriteByte('_')

	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := 0; i < referenceSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating reference: %w", err)
		}
		sb.WriteByte(referenceAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
