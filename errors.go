package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes used to identify business outcomes across transports.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	TextCodeLoginTaken        = "LOGIN_TAKEN"
	TextCodeEmailTaken        = "EMAIL_TAKEN"
	TextCodeCodeNotFound      = "CODE_NOT_FOUND"
	TextCodeCodeExpiredOrUsed = "CODE_EXPIRED_OR_USED"
	TextCodeAlreadyConfirmed  = "ALREADY_CONFIRMED"
	TextCodeDeliveryFailed    = "DELIVERY_FAILED"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodeEmptyIdentifier   = "EMPTY_IDENTIFIER"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeSessionNotFound   = "SESSION_NOT_FOUND"
)

// ErrIdentityNotFound is returned when no user matches a login or email.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrMismatchedHashAndPassword is returned when credentials do not match.
// Callers fronting a login endpoint should present this and
// ErrIdentityNotFound identically.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrEmailNotFound is the email-scoped variant used by the resend flow.
var ErrEmailNotFound = errors.New("email not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithMetadata(map[string]any{"field": "email"})

// ErrLoginTaken is returned when a registration requests an existing login.
var ErrLoginTaken = errors.New("login already exists", errors.CategoryConflict).
	WithTextCode(TextCodeLoginTaken).
	WithMetadata(map[string]any{"field": "login"})

// ErrEmailTaken is returned when a registration requests an existing email.
var ErrEmailTaken = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithMetadata(map[string]any{"field": "email"})

// ErrCodeNotFound is returned when no user holds the confirmation code.
var ErrCodeNotFound = errors.New("the confirmation code is not found", errors.CategoryNotFound).
	WithTextCode(TextCodeCodeNotFound).
	WithMetadata(map[string]any{"field": "code"})

// ErrCodeExpiredOrUsed merges the expired and already-applied outcomes on
// purpose: the caller is told the same thing either way.
var ErrCodeExpiredOrUsed = errors.New("the confirmation code expired or already been applied", errors.CategoryValidation).
	WithTextCode(TextCodeCodeExpiredOrUsed).
	WithMetadata(map[string]any{"field": "code"})

// ErrAlreadyConfirmed is returned when a resend targets a confirmed account.
var ErrAlreadyConfirmed = errors.New("email already been confirmed", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyConfirmed).
	WithMetadata(map[string]any{"field": "email"})

// ErrDeliveryFailed is returned when the confirmation email could not be
// sent. The user record and its code remain persisted.
var ErrDeliveryFailed = errors.New("mail service error", errors.CategoryOperation).
	WithTextCode(TextCodeDeliveryFailed)

// ErrNoEmptyString is returned when an empty password reaches the hasher.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrNoEmptyIdentifier is returned when an empty identifier reaches lookup.
var ErrNoEmptyIdentifier = errors.New("identifier must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyIdentifier)

// ErrTokenExpired is the structured variant of jwt's expiry error.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers undecodable or badly signed tokens.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnableToFindSession is the error when the request carries no token.
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// FieldFromError resolves the field a business error is scoped to, or ""
// when the error carries no field metadata.
func FieldFromError(err error) string {
	var rich *errors.Error
	if !errors.As(err, &rich) || rich.Metadata == nil {
		return ""
	}

	if field, ok := rich.Metadata["field"].(string); ok {
		return field
	}

	return ""
}
