package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles order registration.
// New orders start in pending status with a creation entry already in their
// status history. List caches are invalidated after the commit so the new
// order shows up immediately.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	effects    EffectRunner
}

// NewCreateOrderCommandHandler creates a handler for order registration.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, effects EffectRunner) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		effects:    effects,
	}
}

// Handle processes the order registration command.
// Uses transaction to ensure order is properly persisted or rolled back on error.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := order.NewOrder(cmd.OrderID(), cmd.CustomerID(), cmd.Total(), cmd.PaymentMethod())
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

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.effects.Run(ctx, []order.Effect{order.InvalidateCacheEffect{OrderID: aggregate.ID()}})
	return nil
}
