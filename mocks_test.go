package accounts_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/ospect/go-accounts"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockIdentityProvider implements accounts.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (accounts.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(accounts.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (accounts.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(accounts.Identity)
	return identity, args.Error(1)
}

// MockConfig implements accounts.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	aud, _ := args.Get(0).([]string)
	return aud
}

// MockActivitySink implements accounts.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event accounts.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockUserStore implements accounts.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByLoginOrEmail(ctx context.Context, identifier string) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

// MockUsers stubs the users repository. The embedded interface covers the
// methods a test never reaches; calling one of those panics.
type MockUsers struct {
	mock.Mock
	accounts.Users
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByLoginOrEmail(ctx context.Context, identifier string) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByLoginOrEmailTx(ctx context.Context, tx bun.IDB, identifier string) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByConfirmationCode(ctx context.Context, code string) (*accounts.User, error) {
	args := m.Called(ctx, code)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) ConfirmEmailByCode(ctx context.Context, code string, now time.Time) (*accounts.User, error) {
	args := m.Called(ctx, code, now)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) RenewConfirmationByEmail(ctx context.Context, email, code string, expiresAt time.Time) (*accounts.User, error) {
	args := m.Called(ctx, email, code, expiresAt)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

// CreateTx echoes the inserted record when the stubbed return value is nil
// and no error is set, mirroring what the real repository does.
func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.User, criteria ...repository.InsertCriteria) (*accounts.User, error) {
	args := m.Called(ctx, record)
	if user, ok := args.Get(0).(*accounts.User); ok {
		return user, args.Error(1)
	}
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return record, nil
}

// MockRepositoryManager hands out the stubbed users repository and runs
// transaction bodies inline.
type MockRepositoryManager struct {
	UsersRepo *MockUsers
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{UsersRepo: &MockUsers{}}
}

func (m *MockRepositoryManager) Users() accounts.Users {
	return m.UsersRepo
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// fixedClock pins time for expiry decisions
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// codeSequence hands out predetermined confirmation codes
type codeSequence struct {
	codes []string
	next  int
}

func (c *codeSequence) Next() string {
	if c.next >= len(c.codes) {
		return "exhausted"
	}
	code := c.codes[c.next]
	c.next++
	return code
}
