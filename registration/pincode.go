package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const pinCodeSpace = 1_000_000

type PinGenerator func() (string, error)

// GeneratePinCode returns a uniformly random 6-digit code, zero padded.
func GeneratePinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinCodeSpace))
	if err != nil {
		return "", fmt.Errorf("failed to read random pin: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
