package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ospect/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity implements accounts.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := accounts.NewTokenService(signingKey, 24, "test-issuer", jwt.ClaimStrings{"test-audience"}, nil)
		assert.NotNil(t, service)
	})
}

func TestTokenServiceGenerate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	audience := jwt.ClaimStrings{"test-audience"}

	service := accounts.NewTokenService(signingKey, 24, issuer, audience, nil)

	t.Run("generates valid JWT token", func(t *testing.T) {
		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")

		tokenString, err := service.Generate(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &accounts.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*accounts.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, issuer, claims.Issuer)
		assert.Equal(t, audience, claims.Audience)
		assert.NotEmpty(t, claims.ID, "every token gets a jti")
		assert.NotNil(t, claims.ExpiresAt)

		identity.AssertExpectations(t)
	})

	t.Run("distinct tokens get distinct jti", func(t *testing.T) {
		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")

		t1, err := service.Generate(identity)
		require.NoError(t, err)
		t2, err := service.Generate(identity)
		require.NoError(t, err)

		assert.NotEqual(t, t1, t2)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"
	audience := jwt.ClaimStrings{"test-audience"}

	service := accounts.NewTokenService(signingKey, 24, issuer, audience, nil)

	identity := &MockIdentity{}
	identity.On("ID").Return("user-123")

	t.Run("round trip", func(t *testing.T) {
		tokenString, err := service.Generate(identity)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)

		assert.Equal(t, "user-123", claims.UserID())
		assert.False(t, claims.Expires().IsZero())
		assert.False(t, claims.IssuedAt().IsZero())
	})

	t.Run("expired token", func(t *testing.T) {
		past := &fixedClock{now: time.Now().Add(-48 * time.Hour)}
		expiredService := accounts.NewTokenService(signingKey, 24, issuer, audience, nil).
			WithClock(past)

		tokenString, err := expiredService.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.True(t, accounts.IsTokenExpiredError(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		assert.Error(t, err)
		assert.False(t, accounts.IsTokenExpiredError(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := accounts.NewTokenService([]byte("other-key"), 24, issuer, audience, nil)

		tokenString, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := accounts.NewTokenService(signingKey, 24, "someone-else", audience, nil)

		tokenString, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})
}
