package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConfirmUserEmailSQL flips the confirmed flag in one conditional write.
// The predicate is the source of truth: a code that is missing, expired,
// already applied, or superseded by a resend updates zero rows.
var ConfirmUserEmailSQL = `UPDATE "users" AS "usr"
SET
	"is_email_confirmed" = TRUE
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."confirmation_code" = ?
AND "usr"."is_email_confirmed" = FALSE
AND "usr"."confirmation_expires_at" > ?
RETURNING *;`

// RenewConfirmationSQL replaces the live code and expiry in a single write,
// keyed by email. The previous code becomes permanently invalid.
var RenewConfirmationSQL = `UPDATE "users" AS "usr"
SET
	"confirmation_code" = ?,
	"confirmation_expires_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."email" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByLoginOrEmail(ctx context.Context, identifier string) (*User, error)
	GetByLoginOrEmailTx(ctx context.Context, tx bun.IDB, identifier string) (*User, error)
	GetByConfirmationCode(ctx context.Context, code string) (*User, error)
	GetByConfirmationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error)

	ConfirmEmailByCode(ctx context.Context, code string, now time.Time) (*User, error)
	ConfirmEmailByCodeTx(ctx context.Context, tx bun.IDB, code string, now time.Time) (*User, error)
	RenewConfirmationByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*User, error)
	RenewConfirmationByEmailTx(ctx context.Context, tx bun.IDB, email, code string, expiresAt time.Time) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	created, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return created, nil
}

// GetByLoginOrEmail matches the identifier against either unique column,
// case-sensitive, login first.
func (a *users) GetByLoginOrEmail(ctx context.Context, identifier string) (*User, error) {
	return a.GetByLoginOrEmailTx(ctx, a.db, identifier)
}

func (a *users) GetByLoginOrEmailTx(ctx context.Context, tx bun.IDB, identifier string) (*User, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, ErrNoEmptyIdentifier
	}

	for _, column := range []string{"login", "email"} {
		record := &User{}
		err := tx.NewSelect().
			Model(record).
			Where(fmt.Sprintf("?TableAlias.%s = ?", column), identifier).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *users) GetByConfirmationCode(ctx context.Context, code string) (*User, error) {
	return a.GetByConfirmationCodeTx(ctx, a.db, code)
}

func (a *users) GetByConfirmationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.confirmation_code = ?", code).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"confirmation_code": code,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ConfirmEmailByCode(ctx context.Context, code string, now time.Time) (*User, error) {
	return a.ConfirmEmailByCodeTx(ctx, a.db, code, now)
}

// ConfirmEmailByCodeTx reports record-not-found when the conditional update
// touched zero rows, whatever the reason; callers decide how to present it.
func (a *users) ConfirmEmailByCodeTx(ctx context.Context, tx bun.IDB, code string, now time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConfirmUserEmailSQL, code, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"confirmation_code": code,
			})
	}

	return res[0], nil
}

func (a *users) RenewConfirmationByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*User, error) {
	return a.RenewConfirmationByEmailTx(ctx, a.db, email, code, expiresAt)
}

func (a *users) RenewConfirmationByEmailTx(ctx context.Context, tx bun.IDB, email, code string, expiresAt time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, RenewConfirmationSQL, code, expiresAt, email)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return res[0], nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// mapUniqueViolation converts driver-level uniqueness errors into the
// business conflict kinds, so two registrations racing past the pre-checks
// still resolve to LoginTaken/EmailTaken. The repository layer wraps driver
// failures in rich errors whose top-level message is generic, so we walk
// the unwrap chain down to the driver error before matching. Matches
// sqlite and postgres message shapes.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		msg := cause.Error()
		if !strings.Contains(msg, "UNIQUE constraint failed") &&
			!strings.Contains(msg, "duplicate key value violates unique constraint") {
			continue
		}

		if strings.Contains(msg, "login") {
			return ErrLoginTaken
		}

		if strings.Contains(msg, "email") {
			return ErrEmailTaken
		}
	}

	return err
}
