package auth

import (
	"time"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password-reset token stays usable.
const ResetTokenTTL = time.Hour

// NewResetToken returns an opaque single-use token and its expiry.
func NewResetToken() (string, time.Time) {
	return uuid.NewString(), time.Now().Add(ResetTokenTTL)
}
