package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of decimal digits in a generated code.
const Length = 4

// Generate returns a code in [1000, 9999], so it never has a leading zero.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}
