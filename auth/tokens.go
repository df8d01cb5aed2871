package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	VerificationTTL  = time.Hour
	PasswordResetTTL = time.Hour
	TwoFactorTTL     = 5 * time.Minute
)

// NewToken returns an opaque single-use token for email links.
func NewToken() string {
	return uuid.NewString()
}

// NewCode returns a six digit numeric code for two-factor login.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
