package commands

import (
	"context"
	"time"

	"orderflow/internal/pkg/errs"
)

// StaleLocationAlerter receives alerts for delivering orders whose position
// has gone stale. The notification hub adapter implements this.
type StaleLocationAlerter interface {
	AlertStaleLocation(ctx context.Context, orderID int64, lastSeen *time.Time)
}

// FlagStaleLocationsCommandHandler scans delivering orders and alerts on
// positions older than the staleness window. Orders that never reported a
// position count as stale from the moment they started delivering.
type FlagStaleLocationsCommandHandler struct {
	uowFactory OrderUoWFactory
	alerter    StaleLocationAlerter
	maxAge     time.Duration
	now        func() time.Time
}

// NewFlagStaleLocationsCommandHandler creates a handler for stale location
// scans. maxAge is how old a position may be before it is flagged.
func NewFlagStaleLocationsCommandHandler(
	uowFactory OrderUoWFactory,
	alerter StaleLocationAlerter,
	maxAge time.Duration,
) (FlagStaleLocationsCommandHandler, error) {
	if alerter == nil {
		return FlagStaleLocationsCommandHandler{}, errs.NewValueIsRequiredError("alerter")
	}
	if maxAge <= 0 {
		return FlagStaleLocationsCommandHandler{}, errs.NewValueIsInvalidError("maxAge")
	}

	return FlagStaleLocationsCommandHandler{
		uowFactory: uowFactory,
		alerter:    alerter,
		maxAge:     maxAge,
		now:        time.Now,
	}, nil
}

// Handle processes the scan command. Reads run in one transaction; alerts go
// out after it ends.
func (h *FlagStaleLocationsCommandHandler) Handle(ctx context.Context, cmd FlagStaleLocationsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	delivering, err := uow.OrderRepository().GetAllDelivering(ctx)
	if err != nil {
		return err
	}

	now := h.now()
	for _, aggregate := range delivering {
		sample := aggregate.DeliveryLocation()
		if sample == nil {
			h.alerter.AlertStaleLocation(ctx, aggregate.ID(), nil)
			continue
		}
		if sample.IsStale(now, h.maxAge) {
			capturedAt := sample.CapturedAt
			h.alerter.AlertStaleLocation(ctx, aggregate.ID(), &capturedAt)
		}
	}

	return nil
}
