package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Validate(t *testing.T) {
	t.Run("valid_statuses", func(t *testing.T) {
		for _, s := range []order.Status{
			order.Pending, order.Preparing, order.Delivering, order.Completed, order.Cancelled,
		} {
			require.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("invalid_statuses", func(t *testing.T) {
		for _, s := range []order.Status{order.Unknown, order.Status(42), order.Status(-1)} {
			err := s.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "pending", order.Pending.String())
	assert.Equal(t, "preparing", order.Preparing.String())
	assert.Equal(t, "delivering", order.Delivering.String())
	assert.Equal(t, "completed", order.Completed.String())
	assert.Equal(t, "cancelled", order.Cancelled.String())
	assert.Equal(t, "Unknown", order.Unknown.String())
	assert.Equal(t, "Unknown", order.Status(42).String())
}

func TestParseStatus(t *testing.T) {
	t.Run("round_trips_valid_statuses", func(t *testing.T) {
		for _, s := range []order.Status{
			order.Pending, order.Preparing, order.Delivering, order.Completed, order.Cancelled,
		} {
			parsed, err := order.ParseStatus(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("rejects_unknown_strings", func(t *testing.T) {
		for _, value := range []string{"", "Unknown", "PENDING", "shipped"} {
			_, err := order.ParseStatus(value)
			require.Error(t, err, value)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[order.Status][]order.Status{
		order.Pending:    {order.Preparing, order.Cancelled},
		order.Preparing:  {order.Delivering, order.Cancelled},
		order.Delivering: {order.Completed},
		order.Completed:  {},
		order.Cancelled:  {},
	}

	all := []order.Status{
		order.Pending, order.Preparing, order.Delivering, order.Completed, order.Cancelled,
	}

	for from, targets := range allowed {
		allowedSet := make(map[order.Status]bool)
		for _, to := range targets {
			allowedSet[to] = true
		}

		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, allowedSet[to], got, "%s -> %s", from, to)
		}
	}
}

func TestStatus_CanTransitionTo_CancellationWindow(t *testing.T) {
	// Cancellation is permitted only before delivery starts.
	assert.True(t, order.Pending.CanTransitionTo(order.Cancelled))
	assert.True(t, order.Preparing.CanTransitionTo(order.Cancelled))
	assert.False(t, order.Delivering.CanTransitionTo(order.Cancelled))
	assert.False(t, order.Completed.CanTransitionTo(order.Cancelled))
}

func TestStatus_IsActive(t *testing.T) {
	assert.True(t, order.Pending.IsActive())
	assert.True(t, order.Preparing.IsActive())
	assert.False(t, order.Delivering.IsActive())
	assert.False(t, order.Completed.IsActive())
	assert.False(t, order.Cancelled.IsActive())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, order.Pending.IsTerminal())
	assert.False(t, order.Preparing.IsTerminal())
	assert.False(t, order.Delivering.IsTerminal())
	assert.True(t, order.Completed.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
}
