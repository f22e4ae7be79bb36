package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record. Login and Email are globally unique, and the
// confirmation columns are owned exclusively by the user record; a code has
// no lifecycle of its own.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Login         string    `bun:"login,notnull,unique" json:"login,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	// LoginAttempts is persisted for a future lockout policy but nothing
	// reads it yet.
	LoginAttempts         int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	ConfirmationCode      string     `bun:"confirmation_code,notnull" json:"-"`
	ConfirmationExpiresAt time.Time  `bun:"confirmation_expires_at,notnull" json:"-"`
	EmailConfirmed        bool       `bun:"is_email_confirmed,notnull" json:"is_email_confirmed,omitempty"`
	CreatedAt             *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt             *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt             *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Confirmation is the embedded confirmation sub-entity as one value.
type Confirmation struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Confirmed bool      `json:"confirmed"`
}

// Confirmation returns the user's confirmation state.
func (u *User) Confirmation() Confirmation {
	return Confirmation{
		Code:      u.ConfirmationCode,
		ExpiresAt: u.ConfirmationExpiresAt,
		Confirmed: u.EmailConfirmed,
	}
}

// SetConfirmation stamps a freshly issued code and expiry onto the record.
// It never touches EmailConfirmed; that flag flips exactly once, in the
// store's conditional update.
func (u *User) SetConfirmation(code string, expiresAt time.Time) *User {
	u.ConfirmationCode = code
	u.ConfirmationExpiresAt = expiresAt
	return u
}
