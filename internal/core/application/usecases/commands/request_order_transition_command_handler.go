package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/metrics"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/keymutex"
)

// RequestOrderTransitionCommandHandler handles order status transitions.
// Writers on the same order are serialized with a keyed mutex; on top of
// that, persistence uses optimistic versioning, and a version conflict from
// an out-of-band writer is retried once with freshly loaded state. Side
// effects run only after, and only if, the transaction commits.
//
// Example:
//
//	handler := NewRequestOrderTransitionCommandHandler(uowFactory, locks, effectRunner)
//	cmd, _ := NewRequestOrderTransitionCommand(42, order.Preparing, order.ActorAdmin, nil, "")
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("transition failed: %w", err)
//	}
type RequestOrderTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
	locks      *keymutex.KeyMutex
	effects    EffectRunner
}

// NewRequestOrderTransitionCommandHandler creates a handler for order
// transitions. Requires an OrderUoWFactory for transactional persistence, a
// keyed mutex shared with the other order write handlers, and an effect
// runner for post-commit side effects.
func NewRequestOrderTransitionCommandHandler(
	uowFactory OrderUoWFactory,
	locks *keymutex.KeyMutex,
	effects EffectRunner,
) RequestOrderTransitionCommandHandler {
	return RequestOrderTransitionCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
		effects:    effects,
	}
}

// Handle processes the transition command.
// Same-status requests are accepted and do nothing. Illegal transitions and
// failed delivering-entry gates surface as domain errors and increment the
// rejection counter.
func (h *RequestOrderTransitionCommandHandler) Handle(ctx context.Context, cmd RequestOrderTransitionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.OrderID())
	defer h.locks.Unlock(cmd.OrderID())

	effects, err := h.transitionOnce(ctx, cmd)
	if errors.Is(err, errs.ErrVersionConflict) {
		effects, err = h.transitionOnce(ctx, cmd)
	}

	if err != nil {
		if isTransitionRejection(err) {
			metrics.OrderTransitionRejectionsTotal.Inc()
		}
		return err
	}

	if len(effects) > 0 {
		metrics.OrderTransitionsTotal.WithLabelValues(cmd.ToStatus().String()).Inc()
		h.effects.Run(ctx, effects)
	}

	return nil
}

func (h *RequestOrderTransitionCommandHandler) transitionOnce(
	ctx context.Context,
	cmd RequestOrderTransitionCommand,
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

	effects, err := aggregate.Transition(cmd.ToStatus(), cmd.Actor(), cmd.DeliveryPersonID(), cmd.Note())
	if err != nil {
		return nil, err
	}

	// Same-status request: nothing changed, nothing to persist.
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

func isTransitionRejection(err error) bool {
	return errors.Is(err, order.ErrInvalidTransition) ||
		errors.Is(err, order.ErrMissingDeliveryPerson) ||
		errors.Is(err, order.ErrReceiptNotVerified)
}
