package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/keymutex"
)

// UpdateDeliveryLocationCommandHandler handles delivery position reports.
// The state machine is not involved: the handler stores the newest sample on
// the aggregate, invalidates the cached order, and notifies subscribers.
type UpdateDeliveryLocationCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keymutex.KeyMutex
	effects    EffectRunner
}

// NewUpdateDeliveryLocationCommandHandler creates a handler for location
// updates.
func NewUpdateDeliveryLocationCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keymutex.KeyMutex,
	effects EffectRunner,
) UpdateDeliveryLocationCommandHandler {
	return UpdateDeliveryLocationCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		effects:    effects,
	}
}

// Handle processes the location update command.
func (h *UpdateDeliveryLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDeliveryLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	effects, err := h.updateOnce(ctx, cmd)
	if errors.Is(err, errs.ErrVersionConflict) {
		effects, err = h.updateOnce(ctx, cmd)
	}
	if err != nil {
		return err
	}

	h.effects.Run(ctx, effects)
	return nil
}

func (h *UpdateDeliveryLocationCommandHandler) updateOnce(
	ctx context.Context,
	cmd UpdateDeliveryLocationCommand,
) ([]order.Effect, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	effects, err := aggregate.UpdateDeliveryLocation(cmd.Sample())
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return effects, nil
}
