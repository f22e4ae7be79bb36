package accounts

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationWindow is how long an issued code stays valid.
var ConfirmationWindow = time.Hour

type uuidCodeGenerator struct{}

// NewCodeGenerator returns the default CodeGenerator. Codes are v4 UUID
// strings, drawn from crypto/rand, which also makes them globally unique
// across live codes.
func NewCodeGenerator() CodeGenerator {
	return uuidCodeGenerator{}
}

func (uuidCodeGenerator) Next() string {
	return uuid.NewString()
}

type systemClock struct{}

// SystemClock is the wall-clock Clock used outside of tests.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
