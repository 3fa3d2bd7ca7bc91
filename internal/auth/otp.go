package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

const otpDigits = 6

// GenerateOTP returns a cryptographically random 6-digit one-time password
// together with its hash. Only the hash is persisted.
func GenerateOTP() (code string, hash string, err error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}

	code = fmt.Sprintf("%0*d", otpDigits, n)
	return code, HashOTP(code), nil
}

// HashOTP returns the hex-encoded SHA-256 digest of a one-time password.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// VerifyOTP compares a submitted code against a stored hash in constant time.
func VerifyOTP(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashOTP(code)), []byte(storedHash)) == 1
}
