package accounts_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ospect/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestCodeGeneratorProducesUniqueUUIDs(t *testing.T) {
	gen := accounts.NewCodeGenerator()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := gen.Next()

		_, err := uuid.Parse(code)
		assert.NoError(t, err)

		assert.False(t, seen[code], "code %s repeated", code)
		seen[code] = true
	}
}

func TestSystemClock(t *testing.T) {
	clock := accounts.SystemClock()
	assert.False(t, clock.Now().IsZero())
}
