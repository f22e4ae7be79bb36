package accounts_test

import (
	"context"
	"testing"

	"github.com/ospect/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestActivitySinkFunc(t *testing.T) {
	t.Run("delegates to the function", func(t *testing.T) {
		var got accounts.ActivityEvent
		sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
			got = event
			return nil
		})

		err := sink.Record(context.Background(), accounts.ActivityEvent{
			EventType: accounts.ActivityEventLoginSuccess,
			UserID:    "user-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, accounts.ActivityEventLoginSuccess, got.EventType)
		assert.Equal(t, "user-1", got.UserID)
	})

	t.Run("nil func records nothing", func(t *testing.T) {
		var sink accounts.ActivitySinkFunc

		err := sink.Record(context.Background(), accounts.ActivityEvent{})
		assert.NoError(t, err)
	})
}
