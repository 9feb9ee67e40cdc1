package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/keymutex"
)

// AssignDeliveryPersonCommandHandler handles delivery person assignment.
// Assignment is allowed while the order is pending or preparing; once out
// for delivery the assignee is fixed.
type AssignDeliveryPersonCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keymutex.KeyMutex
	effects    EffectRunner
}

// NewAssignDeliveryPersonCommandHandler creates a handler for delivery
// person assignment.
func NewAssignDeliveryPersonCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keymutex.KeyMutex,
	effects EffectRunner,
) AssignDeliveryPersonCommandHandler {
	return AssignDeliveryPersonCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		effects:    effects,
	}
}

// Handle processes the assignment command.
func (h *AssignDeliveryPersonCommandHandler) Handle(ctx context.Context, cmd AssignDeliveryPersonCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	err := h.assignOnce(ctx, cmd)
	if errors.Is(err, errs.ErrVersionConflict) {
		err = h.assignOnce(ctx, cmd)
	}
	if err != nil {
		return err
	}

	h.effects.Run(ctx, []order.Effect{order.InvalidateCacheEffect{OrderID: cmd.OrderID()}})
	return nil
}

func (h *AssignDeliveryPersonCommandHandler) assignOnce(ctx context.Context, cmd AssignDeliveryPersonCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.AssignDeliveryPerson(cmd.DeliveryPersonID()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
