package commands

import (
	"context"
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/keymutex"
)

// ArchiveOrderCommandHandler handles order archival.
type ArchiveOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keymutex.KeyMutex
	effects    EffectRunner
}

// NewArchiveOrderCommandHandler creates a handler for order archival.
func NewArchiveOrderCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keymutex.KeyMutex,
	effects EffectRunner,
) ArchiveOrderCommandHandler {
	return ArchiveOrderCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		effects:    effects,
	}
}

// Handle processes the archive command.
// Archiving an already archived order succeeds without touching storage.
func (h *ArchiveOrderCommandHandler) Handle(ctx context.Context, cmd ArchiveOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	err := h.archiveOnce(ctx, cmd)
	if errors.Is(err, errs.ErrVersionConflict) {
		err = h.archiveOnce(ctx, cmd)
	}

	return err
}

func (h *ArchiveOrderCommandHandler) archiveOnce(ctx context.Context, cmd ArchiveOrderCommand) error {
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

	effects, err := aggregate.Archive()
	if err != nil {
		return err
	}

	// Already archived: nothing changed, nothing to persist.
	if len(effects) == 0 {
		return nil
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.effects.Run(ctx, effects)
	return nil
}
