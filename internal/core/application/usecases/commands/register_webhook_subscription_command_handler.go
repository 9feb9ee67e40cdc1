package commands

import (
	"context"

	"orderflow/internal/core/domain/model/webhook"
)

// RegisterWebhookSubscriptionCommandHandler handles webhook endpoint
// registration. It runs on the cross-aggregate unit of work so admin flows
// can persist subscription changes alongside order changes in one
// transaction.
type RegisterWebhookSubscriptionCommandHandler struct {
	uowFactory UoWFactory
}

// NewRegisterWebhookSubscriptionCommandHandler creates a handler for webhook
// endpoint registration.
func NewRegisterWebhookSubscriptionCommandHandler(uowFactory UoWFactory) RegisterWebhookSubscriptionCommandHandler {
	return RegisterWebhookSubscriptionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the registration command. The subscription aggregate
// enforces the URL and secret constraints; unsigned payloads are never sent,
// so a subscription without a secret is rejected here.
func (h *RegisterWebhookSubscriptionCommandHandler) Handle(ctx context.Context, cmd RegisterWebhookSubscriptionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	subscription, err := webhook.NewSubscription(cmd.SubscriptionID(), cmd.URL(), cmd.EventType(), cmd.Secret())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.WebhookSubscriptionRepository().Add(ctx, subscription); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
