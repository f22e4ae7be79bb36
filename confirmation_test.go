package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/ospect/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationsIssue(t *testing.T) {
	repo := NewMockRepositoryManager()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	confirmations := accounts.NewConfirmations(
		repo,
		accounts.WithCodeGenerator(&codeSequence{codes: []string{"code-1"}}),
		accounts.WithClock(&fixedClock{now: now}),
	)

	user := &accounts.User{}
	c := confirmations.Issue(user)

	assert.Equal(t, "code-1", c.Code)
	assert.Equal(t, now.Add(accounts.ConfirmationWindow), c.ExpiresAt)
	assert.False(t, c.Confirmed)
	assert.Equal(t, "code-1", user.ConfirmationCode)
	assert.False(t, user.EmailConfirmed)
}

func TestConfirmationsConfirm(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	newService := func(repo *MockRepositoryManager) *accounts.Confirmations {
		return accounts.NewConfirmations(repo, accounts.WithClock(&fixedClock{now: now}))
	}

	t.Run("consumes a live code", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := newService(repo)

		user := &accounts.User{
			ID:                    uuid.New(),
			ConfirmationCode:      "live-code",
			ConfirmationExpiresAt: now.Add(30 * time.Minute),
		}

		repo.UsersRepo.On("GetByConfirmationCode", ctx, "live-code").Return(user, nil).Once()
		repo.UsersRepo.On("ConfirmEmailByCode", ctx, "live-code", now).Return(user, nil).Once()

		confirmed, err := service.Confirm(ctx, "live-code")

		require.NoError(t, err)
		assert.Equal(t, user.ID, confirmed.ID)
		repo.UsersRepo.AssertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := newService(repo)

		repo.UsersRepo.On("GetByConfirmationCode", ctx, "ghost").
			Return(nil, repository.NewRecordNotFound()).Once()

		user, err := service.Confirm(ctx, "ghost")

		assert.Nil(t, user)
		assert.Equal(t, accounts.ErrCodeNotFound, err)
		repo.UsersRepo.AssertExpectations(t)
	})

	t.Run("expired code", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := newService(repo)

		user := &accounts.User{
			ID:                    uuid.New(),
			ConfirmationCode:      "stale-code",
			ConfirmationExpiresAt: now.Add(-time.Minute),
		}

		repo.UsersRepo.On("GetByConfirmationCode", ctx, "stale-code").Return(user, nil).Once()

		confirmed, err := service.Confirm(ctx, "stale-code")

		assert.Nil(t, confirmed)
		assert.Equal(t, accounts.ErrCodeExpiredOrUsed, err)
		repo.UsersRepo.AssertNotCalled(t, "ConfirmEmailByCode", ctx, "stale-code", now)
	})

	t.Run("already applied code", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := newService(repo)

		user := &accounts.User{
			ID:                    uuid.New(),
			ConfirmationCode:      "used-code",
			ConfirmationExpiresAt: now.Add(30 * time.Minute),
			EmailConfirmed:        true,
		}

		repo.UsersRepo.On("GetByConfirmationCode", ctx, "used-code").Return(user, nil).Once()

		confirmed, err := service.Confirm(ctx, "used-code")

		assert.Nil(t, confirmed)
		assert.Equal(t, accounts.ErrCodeExpiredOrUsed, err)
	})

	t.Run("pre-read passes but conditional update loses the race", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := newService(repo)

		user := &accounts.User{
			ID:                    uuid.New(),
			ConfirmationCode:      "raced-code",
			ConfirmationExpiresAt: now.Add(30 * time.Minute),
		}

		repo.UsersRepo.On("GetByConfirmationCode", ctx, "raced-code").Return(user, nil).Once()
		repo.UsersRepo.On("ConfirmEmailByCode", ctx, "raced-code", now).
			Return(nil, repository.NewRecordNotFound()).Once()

		confirmed, err := service.Confirm(ctx, "raced-code")

		assert.Nil(t, confirmed)
		assert.Equal(t, accounts.ErrCodeExpiredOrUsed, err)
		repo.UsersRepo.AssertExpectations(t)
	})
}

func TestConfirmationsRenew(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("rotates the code for an unconfirmed account", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := accounts.NewConfirmations(
			repo,
			accounts.WithCodeGenerator(&codeSequence{codes: []string{"fresh-code"}}),
			accounts.WithClock(&fixedClock{now: now}),
		)

		existing := &accounts.User{
			ID:                    uuid.New(),
			Email:                 "alice@example.com",
			ConfirmationCode:      "old-code",
			ConfirmationExpiresAt: now.Add(-time.Minute),
		}
		renewed := &accounts.User{
			ID:                    existing.ID,
			Email:                 existing.Email,
			ConfirmationCode:      "fresh-code",
			ConfirmationExpiresAt: now.Add(accounts.ConfirmationWindow),
		}

		repo.UsersRepo.On("GetByIdentifier", ctx, "alice@example.com").Return(existing, nil).Once()
		repo.UsersRepo.On("RenewConfirmationByEmail", ctx, "alice@example.com", "fresh-code", now.Add(accounts.ConfirmationWindow)).
			Return(renewed, nil).Once()

		user, err := service.Renew(ctx, "alice@example.com")

		require.NoError(t, err)
		assert.Equal(t, "fresh-code", user.ConfirmationCode)
		repo.UsersRepo.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := accounts.NewConfirmations(repo)

		repo.UsersRepo.On("GetByIdentifier", ctx, "ghost@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		user, err := service.Renew(ctx, "ghost@example.com")

		assert.Nil(t, user)
		assert.Equal(t, accounts.ErrEmailNotFound, err)
	})

	t.Run("already confirmed account", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		service := accounts.NewConfirmations(repo)

		confirmed := &accounts.User{
			ID:             uuid.New(),
			Email:          "done@example.com",
			EmailConfirmed: true,
		}

		repo.UsersRepo.On("GetByIdentifier", ctx, "done@example.com").Return(confirmed, nil).Once()

		user, err := service.Renew(ctx, "done@example.com")

		assert.Nil(t, user)
		assert.Equal(t, accounts.ErrAlreadyConfirmed, err)
		repo.UsersRepo.AssertNotCalled(t, "RenewConfirmationByEmail")
	})
}
