package webhook_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubscription(t *testing.T) {
	t.Run("valid_subscription", func(t *testing.T) {
		s, err := webhook.NewSubscription(1, "https://example.com/hooks", "order.completed", "s3cret")

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, int64(1), s.ID())
		assert.True(t, s.IsActive())
		assert.Zero(t, s.SuccessCount())
		assert.Zero(t, s.FailureCount())
		assert.Nil(t, s.LastTriggeredAt())
	})

	t.Run("rejects_invalid_url", func(t *testing.T) {
		for _, rawURL := range []string{"", "not-a-url", "ftp://example.com", "/relative/path"} {
			_, err := webhook.NewSubscription(1, rawURL, "order.completed", "s3cret")
			require.Error(t, err, rawURL)
		}
	})

	t.Run("rejects_empty_secret", func(t *testing.T) {
		_, err := webhook.NewSubscription(1, "https://example.com", "order.completed", "")
		require.Error(t, err)
	})

	t.Run("rejects_empty_event_type", func(t *testing.T) {
		_, err := webhook.NewSubscription(1, "https://example.com", "", "s3cret")
		require.Error(t, err)
	})
}

func TestSubscription_Validate(t *testing.T) {
	var s webhook.Subscription
	require.ErrorIs(t, s.Validate(), webhook.ErrSubscriptionIsNotConstructed)
}

func TestSubscription_Matches(t *testing.T) {
	s, err := webhook.NewSubscription(1, "https://example.com", "order.completed", "s3cret")
	require.NoError(t, err)

	assert.True(t, s.Matches("order.completed"))
	assert.False(t, s.Matches("order.cancelled"))

	s.Deactivate()
	assert.False(t, s.Matches("order.completed"), "inactive subscriptions never match")
}

func TestSubscription_Counters(t *testing.T) {
	s, err := webhook.NewSubscription(1, "https://example.com", "order.completed", "s3cret")
	require.NoError(t, err)

	at := time.Now().UTC()
	s.RecordSuccess(at)
	s.RecordSuccess(at.Add(time.Minute))
	s.RecordFailure()

	assert.Equal(t, int64(2), s.SuccessCount())
	assert.Equal(t, int64(1), s.FailureCount())
	require.NotNil(t, s.LastTriggeredAt())
	assert.Equal(t, at.Add(time.Minute), *s.LastTriggeredAt())
}

func TestRestoreSubscription(t *testing.T) {
	at := time.Now().UTC()

	s, err := webhook.RestoreSubscription(5, "https://example.com", "order.completed", "s3cret", false, 10, 2, &at)

	require.NoError(t, err)
	assert.False(t, s.IsActive())
	assert.Equal(t, int64(10), s.SuccessCount())
	assert.Equal(t, int64(2), s.FailureCount())
	assert.Equal(t, &at, s.LastTriggeredAt())
}
