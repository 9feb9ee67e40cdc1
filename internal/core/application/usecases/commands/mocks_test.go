package commands_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/webhook"
	"orderflow/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
func (m *MockOrderRepository) GetAllDelivering(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockWebhookSubscriptionRepository struct{ mock.Mock }

func (m *MockWebhookSubscriptionRepository) Add(ctx context.Context, s *webhook.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockWebhookSubscriptionRepository) Update(ctx context.Context, s *webhook.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockWebhookSubscriptionRepository) Get(ctx context.Context, id int64) (*webhook.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Subscription), args.Error(1)
}
func (m *MockWebhookSubscriptionRepository) GetMatching(ctx context.Context, eventType string) ([]*webhook.Subscription, error) {
	args := m.Called(ctx, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*webhook.Subscription), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}
func (m *MockUoW) WebhookSubscriptionRepository() ports.WebhookSubscriptionRepository {
	args := m.Called()
	return args.Get(0).(ports.WebhookSubscriptionRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// RecordingEffectRunner captures effects instead of executing them.
type RecordingEffectRunner struct {
	mu   sync.Mutex
	runs [][]order.Effect
}

func (r *RecordingEffectRunner) Run(_ context.Context, effects []order.Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, effects)
}

func (r *RecordingEffectRunner) Runs() [][]order.Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}
