package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
)

func TestRegisterWebhookSubscriptionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRegisterWebhookSubscriptionCommand(
		5, "https://partner.example.com/hooks", "order.completed", "s3cr3t")
	require.NoError(t, err)

	repo := new(MockWebhookSubscriptionRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("WebhookSubscriptionRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*webhook.Subscription")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRegisterWebhookSubscriptionCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestRegisterWebhookSubscriptionCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.RegisterWebhookSubscriptionCommand{} // not constructed properly
	factory := new(MockUoWFactory)
	h := commands.NewRegisterWebhookSubscriptionCommandHandler(factory)
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
}

func TestRegisterWebhookSubscriptionCommandHandler_Handle_RejectsInvalidURL(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRegisterWebhookSubscriptionCommand(
		5, "not-a-url", "order.completed", "s3cr3t")
	require.NoError(t, err)

	factory := new(MockUoWFactory)
	h := commands.NewRegisterWebhookSubscriptionCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	factory.AssertNotCalled(t, "Create")
}

func TestRegisterWebhookSubscriptionCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRegisterWebhookSubscriptionCommand(
		5, "https://partner.example.com/hooks", "order.completed", "s3cr3t")
	require.NoError(t, err)

	repo := new(MockWebhookSubscriptionRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("WebhookSubscriptionRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*webhook.Subscription")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewRegisterWebhookSubscriptionCommandHandler(factory)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
}

func TestNewRegisterWebhookSubscriptionCommand_Validation(t *testing.T) {
	_, err := commands.NewRegisterWebhookSubscriptionCommand(0, "https://x.example.com", "order.completed", "s")
	assert.Error(t, err)

	_, err = commands.NewRegisterWebhookSubscriptionCommand(5, "", "order.completed", "s")
	assert.Error(t, err)

	_, err = commands.NewRegisterWebhookSubscriptionCommand(5, "https://x.example.com", "", "s")
	assert.Error(t, err)

	_, err = commands.NewRegisterWebhookSubscriptionCommand(5, "https://x.example.com", "order.completed", "")
	assert.Error(t, err)
}
