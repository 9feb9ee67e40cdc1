package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/keymutex"
)

func newAssignHandler(factory commands.OrderUoWFactory, effects commands.EffectRunner) commands.AssignDeliveryPersonCommandHandler {
	return commands.NewAssignDeliveryPersonCommandHandler(factory, keymutex.New(8), effects)
}

func TestAssignDeliveryPersonCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewAssignDeliveryPersonCommand(42, 3)
	require.NoError(t, err)

	aggregate := pendingOrder(t, 42)
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, int64(42)).Return(aggregate, nil).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	effects := new(RecordingEffectRunner)

	h := newAssignHandler(factory, effects)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	require.NotNil(t, aggregate.DeliveryPerson())
	assert.Equal(t, int64(3), *aggregate.DeliveryPerson())
	require.Len(t, effects.Runs(), 1)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAssignDeliveryPersonCommandHandler_Handle_TerminalOrderRejected(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewAssignDeliveryPersonCommand(42, 3)
	require.NoError(t, err)

	aggregate := pendingOrder(t, 42)
	_, err = aggregate.Transition(order.Cancelled, order.ActorAdmin, nil, "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, int64(42)).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	effects := new(RecordingEffectRunner)

	h := newAssignHandler(factory, effects)
	err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrDeliveryPersonNotAssignable)
	assert.Empty(t, effects.Runs())
}

func TestNewAssignDeliveryPersonCommand_Validation(t *testing.T) {
	_, err := commands.NewAssignDeliveryPersonCommand(0, 3)
	assert.Error(t, err)

	_, err = commands.NewAssignDeliveryPersonCommand(42, 0)
	assert.Error(t, err)
}
