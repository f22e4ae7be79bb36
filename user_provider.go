package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// UserStore is the slice of the users repository credential verification
// and session hydration need.
type UserStore interface {
	GetByLoginOrEmail(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
}

// UserProvider resolves and validates identities against stored users.
type UserProvider struct {
	store  UserStore
	hasher PasswordAuthenticator
	logger Logger
}

type UserProviderOption func(*UserProvider)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore, opts ...UserProviderOption) *UserProvider {
	p := &UserProvider{
		store:  store,
		hasher: NewPasswordHasher(),
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

func WithUserProviderLogger(l Logger) UserProviderOption {
	return func(p *UserProvider) {
		p.logger = l
	}
}

func WithPasswordAuthenticator(h PasswordAuthenticator) UserProviderOption {
	return func(p *UserProvider) {
		p.hasher = h
	}
}

// VerifyIdentity will find the user by login or email, compare the
// password against the stored hash, and return the identity. Unknown
// identifier and wrong password are distinct kinds here; the login facade
// collapses them.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, ErrNoEmptyIdentifier
	}

	user, err := u.store.GetByLoginOrEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return identityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without touching
// credentials. Session hydration passes the user id; other callers may
// pass a login or email.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	var user *User
	var err error

	if _, uuidErr := uuid.Parse(identifier); uuidErr == nil {
		user, err = u.store.GetByID(ctx, identifier)
	} else {
		user, err = u.store.GetByLoginOrEmail(ctx, identifier)
	}

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id       string
	username string
	email    string
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Username() string { return a.username }
func (a authIdentity) Email() string    { return a.email }

var _ Identity = authIdentity{}

func identityFromUser(user *User) Identity {
	return authIdentity{
		id:       user.ID.String(),
		username: user.Login,
		email:    user.Email,
	}
}
