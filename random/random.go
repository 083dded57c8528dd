// Package random implements the secure random string collaborator.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces random strings from a caller-supplied character set
// using crypto/rand. Sampling goes through math/big to stay unbiased for
// charsets whose size does not divide 256.
type Generator struct{}

func NewGenerator() Generator { return Generator{} }

func (Generator) Generate(length int, charset string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("random: invalid length %d", length)
	}
	if charset == "" {
		return "", fmt.Errorf("random: empty charset")
	}

	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
