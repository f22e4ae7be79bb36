package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Confirmations owns the confirmation-code state machine: issuance at
// registration, single-use confirmation, and renewal via resend.
//
// Per user the sub-entity moves through:
//
//	Unconfirmed(c0) --Confirm(c0) before expiry--> Confirmed    (terminal)
//	Unconfirmed(c0) --Renew--> Unconfirmed(c1)                  (c0 dead)
//	Confirmed --Confirm(any)--> CodeExpiredOrUsed
//	Confirmed --Renew--> AlreadyConfirmed
type Confirmations struct {
	repo   RepositoryManager
	codes  CodeGenerator
	clock  Clock
	logger Logger
}

type ConfirmationsOption func(*Confirmations)

func NewConfirmations(repo RepositoryManager, opts ...ConfirmationsOption) *Confirmations {
	c := &Confirmations{
		repo:   repo,
		codes:  NewCodeGenerator(),
		clock:  SystemClock(),
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func WithCodeGenerator(gen CodeGenerator) ConfirmationsOption {
	return func(c *Confirmations) {
		c.codes = gen
	}
}

func WithClock(clock Clock) ConfirmationsOption {
	return func(c *Confirmations) {
		c.clock = clock
	}
}

func WithConfirmationsLogger(l Logger) ConfirmationsOption {
	return func(c *Confirmations) {
		c.logger = l
	}
}

// Issue stamps a fresh code and expiry onto the record. At registration the
// stamped record is persisted by the insert itself, so issuance and
// creation are one store operation.
func (c *Confirmations) Issue(user *User) Confirmation {
	user.SetConfirmation(c.codes.Next(), c.clock.Now().Add(ConfirmationWindow))
	return user.Confirmation()
}

// Confirm consumes a code and returns the confirmed user. The pre-read
// only decides which failure the caller sees; the conditional update is
// what guarantees single use, so a zero-row update after a passing
// pre-read still fails as expired-or-used.
func (c *Confirmations) Confirm(ctx context.Context, code string) (*User, error) {
	user, err := c.repo.Users().GetByConfirmationCode(ctx, code)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, ErrCodeNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by confirmation code")
	}

	now := c.clock.Now()
	if user.ConfirmationExpiresAt.Before(now) || user.EmailConfirmed {
		return nil, ErrCodeExpiredOrUsed
	}

	confirmed, err := c.repo.Users().ConfirmEmailByCode(ctx, code, now)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			// Lost the race: another confirm or a resend got there first.
			return nil, ErrCodeExpiredOrUsed
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm email")
	}

	c.logger.Debug("confirmation code consumed for user %s", confirmed.ID.String())

	return confirmed, nil
}

// Renew replaces the live code for an unconfirmed account, invalidating the
// previous one, and returns the updated user carrying the new pair.
func (c *Confirmations) Renew(ctx context.Context, email string) (*User, error) {
	user, err := c.repo.Users().GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, ErrEmailNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for code renewal")
	}

	if user.EmailConfirmed {
		return nil, ErrAlreadyConfirmed
	}

	code := c.codes.Next()
	expiresAt := c.clock.Now().Add(ConfirmationWindow)

	renewed, err := c.repo.Users().RenewConfirmationByEmail(ctx, email, code, expiresAt)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, ErrEmailNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to renew confirmation code")
	}

	return renewed, nil
}
