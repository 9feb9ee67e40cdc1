package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/cache"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/notifications"
)

type fakeInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeInvalidator) Invalidate(keyOrPrefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, keyOrPrefix)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (f *fakeBroadcaster) Broadcast(event notifications.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fakeWebhookSender struct {
	mu      sync.Mutex
	calls   []string
	data    []any
	err     error
	created chan struct{}
}

func (f *fakeWebhookSender) Dispatch(_ context.Context, eventType string, _ int64, data any) error {
	f.mu.Lock()
	f.calls = append(f.calls, eventType)
	f.data = append(f.data, data)
	f.mu.Unlock()
	if f.created != nil {
		close(f.created)
	}
	return f.err
}

type fakeDirectory struct {
	names map[int64]string
	err   error
}

func (f *fakeDirectory) DisplayName(_ context.Context, deliveryPersonID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.names[deliveryPersonID], nil
}

func newRunnerFixture(t *testing.T) (*EffectRunner, *fakeInvalidator, *fakeBroadcaster, *fakeWebhookSender) {
	t.Helper()

	invalidator := &fakeInvalidator{}
	broadcaster := &fakeBroadcaster{}
	sender := &fakeWebhookSender{created: make(chan struct{})}

	runner, err := NewEffectRunner(invalidator, broadcaster, sender, slog.Default())
	require.NoError(t, err)

	return runner, invalidator, broadcaster, sender
}

func Test_NewEffectRunner_RequiresAdapters(t *testing.T) {
	_, err := NewEffectRunner(nil, &fakeBroadcaster{}, &fakeWebhookSender{}, slog.Default())
	assert.Error(t, err)

	_, err = NewEffectRunner(&fakeInvalidator{}, nil, &fakeWebhookSender{}, slog.Default())
	assert.Error(t, err)

	_, err = NewEffectRunner(&fakeInvalidator{}, &fakeBroadcaster{}, nil, slog.Default())
	assert.Error(t, err)
}

func Test_EffectRunner_InvalidatesItemAndListKeys(t *testing.T) {
	// Arrange
	runner, invalidator, _, _ := newRunnerFixture(t)

	// Act
	runner.Run(context.Background(), []order.Effect{order.InvalidateCacheEffect{OrderID: 42}})

	// Assert
	assert.Equal(t, []string{cache.OrderItemKey(42), cache.OrderListPrefix}, invalidator.keys)
}

func Test_EffectRunner_BroadcastsNotifyEffect(t *testing.T) {
	// Arrange
	runner, _, broadcaster, _ := newRunnerFixture(t)

	// Act
	runner.Run(context.Background(), []order.Effect{
		order.NotifyEffect{OrderID: 42, Status: order.Preparing},
	})

	// Assert
	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, int64(42), broadcaster.events[0].OrderID)
	assert.Equal(t, "preparing", broadcaster.events[0].Status)
	assert.False(t, broadcaster.events[0].Timestamp.IsZero())
}

func Test_EffectRunner_ResolvesDeliveryPersonName(t *testing.T) {
	// Arrange
	invalidator := &fakeInvalidator{}
	broadcaster := &fakeBroadcaster{}
	directory := &fakeDirectory{names: map[int64]string{3: "Maria Lopez"}}

	runner, err := NewEffectRunner(invalidator, broadcaster, &fakeWebhookSender{}, slog.Default(),
		WithDeliveryPersonDirectory(directory))
	require.NoError(t, err)

	deliveryPersonID := int64(3)

	// Act
	runner.Run(context.Background(), []order.Effect{
		order.NotifyEffect{OrderID: 42, Status: order.Delivering, DeliveryPersonID: &deliveryPersonID},
	})

	// Assert
	require.Len(t, broadcaster.events, 1)
	require.NotNil(t, broadcaster.events[0].DeliveryPersonName)
	assert.Equal(t, "Maria Lopez", *broadcaster.events[0].DeliveryPersonName)
}

func Test_EffectRunner_OmitsNameWhenLookupFails(t *testing.T) {
	// Arrange
	broadcaster := &fakeBroadcaster{}
	directory := &fakeDirectory{err: errors.New("directory down")}

	runner, err := NewEffectRunner(&fakeInvalidator{}, broadcaster, &fakeWebhookSender{}, slog.Default(),
		WithDeliveryPersonDirectory(directory))
	require.NoError(t, err)

	deliveryPersonID := int64(3)

	// Act
	runner.Run(context.Background(), []order.Effect{
		order.NotifyEffect{OrderID: 42, Status: order.Delivering, DeliveryPersonID: &deliveryPersonID},
	})

	// Assert: the event still goes out, just without a name
	require.Len(t, broadcaster.events, 1)
	assert.Nil(t, broadcaster.events[0].DeliveryPersonName)
}

func Test_EffectRunner_DispatchesWebhookInBackground(t *testing.T) {
	// Arrange
	runner, _, _, sender := newRunnerFixture(t)

	customerID := int64(9)

	// Act
	runner.Run(context.Background(), []order.Effect{
		order.DispatchWebhookEffect{
			EventType: order.EventOrderCompleted,
			OrderID:   42,
			Snapshot: order.WebhookSnapshot{
				Status:        order.Completed,
				CustomerID:    &customerID,
				Total:         decimal.NewFromInt(25),
				PaymentMethod: order.PaymentCard,
			},
		},
	})

	// Assert
	select {
	case <-sender.created:
	case <-time.After(time.Second):
		t.Fatal("webhook dispatch never ran")
	}
	assert.Equal(t, []string{order.EventOrderCompleted}, sender.calls)

	require.Len(t, sender.data, 1)
	payload, ok := sender.data[0].(orderWebhookPayload)
	require.True(t, ok)
	assert.Equal(t, int64(42), payload.OrderID)
	assert.Equal(t, "completed", payload.Status)
	assert.Equal(t, "25", payload.Total)
	assert.Equal(t, "card", payload.PaymentMethod)
}

func Test_EffectRunner_WebhookFailureDoesNotAffectOtherEffects(t *testing.T) {
	// Arrange
	runner, invalidator, broadcaster, sender := newRunnerFixture(t)
	sender.err = errors.New("endpoint down")

	// Act
	runner.Run(context.Background(), []order.Effect{
		order.InvalidateCacheEffect{OrderID: 42},
		order.NotifyEffect{OrderID: 42, Status: order.Completed},
		order.DispatchWebhookEffect{EventType: order.EventOrderCompleted, OrderID: 42},
	})

	// Assert
	<-sender.created
	assert.Len(t, invalidator.keys, 2)
	assert.Len(t, broadcaster.events, 1)
}

func Test_EffectRunner_SkipsHistoryEffects(t *testing.T) {
	// Arrange
	runner, invalidator, broadcaster, _ := newRunnerFixture(t)

	// Act
	runner.Run(context.Background(), []order.Effect{order.AppendHistoryEffect{}})

	// Assert
	assert.Empty(t, invalidator.keys)
	assert.Empty(t, broadcaster.events)
}
