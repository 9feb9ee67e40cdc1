package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/keymutex"
)

// VerifyReceiptCommandHandler handles receipt verification for
// bank-transfer orders.
type VerifyReceiptCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keymutex.KeyMutex
	effects    EffectRunner
}

// NewVerifyReceiptCommandHandler creates a handler for receipt verification.
func NewVerifyReceiptCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keymutex.KeyMutex,
	effects EffectRunner,
) VerifyReceiptCommandHandler {
	return VerifyReceiptCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		effects:    effects,
	}
}

// Handle processes the verification command.
// Verifying an already verified receipt succeeds without touching storage.
func (h *VerifyReceiptCommandHandler) Handle(ctx context.Context, cmd VerifyReceiptCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	effects, err := h.verifyOnce(ctx, cmd)
	if errors.Is(err, errs.ErrVersionConflict) {
		effects, err = h.verifyOnce(ctx, cmd)
	}
	if err != nil {
		return err
	}

	h.effects.Run(ctx, effects)
	return nil
}

func (h *VerifyReceiptCommandHandler) verifyOnce(ctx context.Context, cmd VerifyReceiptCommand) ([]order.Effect, error) {
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

	effects := aggregate.VerifyReceipt()
	if len(effects) == 0 {
		return nil, nil
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return effects, nil
}
