package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const otpDigits = 6

// GenerateSecureOTP generates a 6-digit OTP. Each digit is drawn
// independently, so leading zeros are as likely as anything else.
func GenerateSecureOTP() (string, error) {
	code := make([]byte, otpDigits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// GenerateTransactionID creates a unique payment transaction reference.
func GenerateTransactionID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
