package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrRegisterWebhookSubscriptionCommandIsNotConstructed = errors.New(
		"RegisterWebhookSubscriptionCommand must be created via NewRegisterWebhookSubscriptionCommand constructor",
	)
)

// RegisterWebhookSubscriptionCommand represents a request to register an
// external endpoint for a lifecycle event type. URL and secret constraints
// are enforced by the subscription aggregate; the command only guards
// presence.
type RegisterWebhookSubscriptionCommand struct { //nolint:recvcheck //using for validation
	subscriptionID int64
	url            string
	eventType      string
	secret         string

	guard guard.ConstructorGuard
}

// NewRegisterWebhookSubscriptionCommand creates a command to register a
// webhook endpoint.
func NewRegisterWebhookSubscriptionCommand(
	subscriptionID int64,
	url, eventType, secret string,
) (RegisterWebhookSubscriptionCommand, error) {
	command := RegisterWebhookSubscriptionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setSubscriptionID(subscriptionID),
		command.setURL(url),
		command.setEventType(eventType),
		command.setSecret(secret),
	); err != nil {
		return RegisterWebhookSubscriptionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterWebhookSubscriptionCommand) Validate() error {
	return c.guard.Validate(ErrRegisterWebhookSubscriptionCommandIsNotConstructed)
}

// SubscriptionID returns the unique identifier for the subscription.
func (c RegisterWebhookSubscriptionCommand) SubscriptionID() int64 {
	return c.subscriptionID
}

// URL returns the endpoint the event payloads are delivered to.
func (c RegisterWebhookSubscriptionCommand) URL() string {
	return c.url
}

// EventType returns the lifecycle event the endpoint subscribes to.
func (c RegisterWebhookSubscriptionCommand) EventType() string {
	return c.eventType
}

// Secret returns the shared signing secret.
func (c RegisterWebhookSubscriptionCommand) Secret() string {
	return c.secret
}

func (c *RegisterWebhookSubscriptionCommand) setSubscriptionID(subscriptionID int64) error {
	if subscriptionID <= 0 {
		return errs.NewValueIsRequiredError("subscriptionId")
	}

	c.subscriptionID = subscriptionID
	return nil
}

func (c *RegisterWebhookSubscriptionCommand) setURL(url string) error {
	if url == "" {
		return errs.NewValueIsRequiredError("url")
	}

	c.url = url
	return nil
}

func (c *RegisterWebhookSubscriptionCommand) setEventType(eventType string) error {
	if eventType == "" {
		return errs.NewValueIsRequiredError("eventType")
	}

	c.eventType = eventType
	return nil
}

func (c *RegisterWebhookSubscriptionCommand) setSecret(secret string) error {
	if secret == "" {
		return errs.NewValueIsRequiredError("secret")
	}

	c.secret = secret
	return nil
}
