// Package tracker implements delivery-person location tracking with two
// active modes and a shared push pipeline.
//
// ForegroundPolling reads the device location on a ticker while the app is
// visible; callers may also tick the tracker directly. BackgroundTracking
// registers a scheduled job that keeps pushing while the app is backgrounded.
// Both modes funnel through the same filter: pushes are throttled to one per
// throttle window, and positions that moved less than the minimum distance
// since the last accepted sample are skipped.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/metrics"
	"orderflow/internal/pkg/errs"
)

// Mode is the tracker lifecycle state.
type Mode int

const (
	// ModeInactive means no tracking: no reads, no pushes.
	ModeInactive Mode = iota
	// ModeForegroundPolling means a poll loop runs while the app is visible.
	ModeForegroundPolling
	// ModeBackgroundTracking means a scheduled job drives pushes.
	ModeBackgroundTracking
)

func (m Mode) String() string {
	switch m {
	case ModeForegroundPolling:
		return "foreground_polling"
	case ModeBackgroundTracking:
		return "background_tracking"
	default:
		return "inactive"
	}
}

// LocationProvider reads the current device position.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (kernel.LocationSample, error)
}

// LocationPusher sends an accepted sample upstream.
type LocationPusher interface {
	Push(ctx context.Context, orderID int64, sample kernel.LocationSample) error
}

// Scheduler runs a function periodically while started. The cron-backed
// implementation lives in BackgroundScheduler.
type Scheduler interface {
	Start(fn func()) error
	Stop()
}

const (
	defaultThrottle           = 10 * time.Second
	defaultMinDistance        = 50.0 // meters
	defaultForegroundInterval = 30 * time.Second
	tickTimeout               = 15 * time.Second
)

// Tracker owns the mode state machine and the push filter. All methods are
// safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	mode    Mode
	orderID int64

	provider  LocationProvider
	pusher    LocationPusher
	scheduler Scheduler
	logger    *slog.Logger

	throttle           time.Duration
	minDistance        float64
	foregroundInterval time.Duration
	now                func() time.Time

	foregroundStop chan struct{}
	lastPushedAt   time.Time
	lastSample     *kernel.LocationSample
}

// Option tweaks tracker construction.
type Option func(*Tracker)

// WithThrottle overrides the minimum interval between pushes.
func WithThrottle(d time.Duration) Option {
	return func(t *Tracker) { t.throttle = d }
}

// WithMinDistance overrides the minimum movement in meters before a new
// sample is pushed.
func WithMinDistance(meters float64) Option {
	return func(t *Tracker) { t.minDistance = meters }
}

// WithForegroundInterval overrides the foreground polling cadence.
func WithForegroundInterval(d time.Duration) Option {
	return func(t *Tracker) { t.foregroundInterval = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates an inactive tracker.
func NewTracker(
	provider LocationProvider,
	pusher LocationPusher,
	scheduler Scheduler,
	logger *slog.Logger,
	opts ...Option,
) (*Tracker, error) {
	if provider == nil {
		return nil, errs.NewValueIsRequiredError("provider")
	}
	if pusher == nil {
		return nil, errs.NewValueIsRequiredError("pusher")
	}
	if scheduler == nil {
		return nil, errs.NewValueIsRequiredError("scheduler")
	}

	t := &Tracker{
		mode:               ModeInactive,
		provider:           provider,
		pusher:             pusher,
		scheduler:          scheduler,
		logger:             logger.With("component", "location_tracker"),
		throttle:           defaultThrottle,
		minDistance:        defaultMinDistance,
		foregroundInterval: defaultForegroundInterval,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Mode returns the current lifecycle state.
func (t *Tracker) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// StartForeground switches to foreground polling for the given order and
// starts a poll loop on the foreground interval. Switching from background
// tracking stops the scheduled job first.
func (t *Tracker) StartForeground(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode == ModeForegroundPolling && t.orderID == orderID {
		return nil
	}

	if t.mode == ModeBackgroundTracking {
		t.scheduler.Stop()
	}

	t.stopForegroundLoopLocked()
	t.setModeLocked(ModeForegroundPolling, orderID)
	t.startForegroundLoopLocked()
	return nil
}

// StartBackground switches to background tracking for the given order and
// starts the scheduled job.
func (t *Tracker) StartBackground(orderID int64) error {
	if orderID <= 0 {
		return errs.NewValueIsRequiredError("orderId")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode == ModeBackgroundTracking && t.orderID == orderID {
		return nil
	}

	if err := t.scheduler.Start(t.backgroundTick); err != nil {
		return err
	}

	t.stopForegroundLoopLocked()
	t.setModeLocked(ModeBackgroundTracking, orderID)
	return nil
}

// Stop deactivates tracking and clears the filter state, so a later session
// starts with a fresh baseline.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode == ModeBackgroundTracking {
		t.scheduler.Stop()
	}

	t.stopForegroundLoopLocked()
	t.setModeLocked(ModeInactive, 0)
	t.lastPushedAt = time.Time{}
	t.lastSample = nil
}

// OnAppResume handles the app returning to the foreground: background
// tracking is replaced by foreground polling and one immediate refresh is
// attempted so the map is current right away. The refresh shares the push
// throttle with the sampling paths; only the distance filter is skipped.
// The refresh error is logged, not returned; resuming must always succeed.
func (t *Tracker) OnAppResume(ctx context.Context) {
	t.mu.Lock()
	if t.mode == ModeInactive {
		t.mu.Unlock()
		return
	}

	orderID := t.orderID
	if t.mode == ModeBackgroundTracking {
		t.scheduler.Stop()
	}
	t.stopForegroundLoopLocked()
	t.setModeLocked(ModeForegroundPolling, orderID)
	t.startForegroundLoopLocked()
	t.mu.Unlock()

	sample, err := t.provider.CurrentLocation(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "refresh on app resume failed", "order_id", orderID, "error", err)
		return
	}
	if err := t.pushGuarded(ctx, orderID, sample, false); err != nil {
		t.logger.WarnContext(ctx, "refresh on app resume failed", "order_id", orderID, "error", err)
	}
}

// OnAppBackground handles the app leaving the foreground: foreground polling
// is replaced by background tracking for the same order.
func (t *Tracker) OnAppBackground() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode != ModeForegroundPolling {
		return nil
	}

	if err := t.scheduler.Start(t.backgroundTick); err != nil {
		return err
	}

	t.stopForegroundLoopLocked()
	t.setModeLocked(ModeBackgroundTracking, t.orderID)
	return nil
}

// Tick performs one poll cycle: read the position, apply the throttle and
// minimum-distance filters, push if accepted. Filtered samples are not an
// error. Inactive trackers ignore ticks.
func (t *Tracker) Tick(ctx context.Context) error {
	t.mu.Lock()
	if t.mode == ModeInactive {
		t.mu.Unlock()
		return nil
	}
	orderID := t.orderID
	t.mu.Unlock()

	sample, err := t.provider.CurrentLocation(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "location read failed", "order_id", orderID, "error", err)
		return err
	}

	return t.pushFiltered(ctx, orderID, sample)
}

// RefreshNow forces one read-and-push cycle, bypassing the throttle and
// distance filters. Errors surface to the caller so a user-initiated refresh
// can report failure.
func (t *Tracker) RefreshNow(ctx context.Context) error {
	t.mu.Lock()
	if t.mode == ModeInactive {
		t.mu.Unlock()
		return errs.NewValueIsInvalidError("tracker is inactive")
	}
	orderID := t.orderID
	t.mu.Unlock()

	sample, err := t.provider.CurrentLocation(ctx)
	if err != nil {
		return err
	}

	return t.push(ctx, orderID, sample)
}

func (t *Tracker) backgroundTick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	// Tick already logs failures; background runs have nobody to return to.
	_ = t.Tick(ctx)
}

func (t *Tracker) startForegroundLoopLocked() {
	stop := make(chan struct{})
	t.foregroundStop = stop

	go func() {
		ticker := time.NewTicker(t.foregroundInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
				_ = t.Tick(ctx)
				cancel()
			}
		}
	}()
}

func (t *Tracker) stopForegroundLoopLocked() {
	if t.foregroundStop != nil {
		close(t.foregroundStop)
		t.foregroundStop = nil
	}
}

func (t *Tracker) pushFiltered(ctx context.Context, orderID int64, sample kernel.LocationSample) error {
	return t.pushGuarded(ctx, orderID, sample, true)
}

// pushGuarded applies the throttle (and optionally the distance filter) and
// pushes if the sample is accepted. The throttle window is claimed before the
// lock is released, so concurrent sampling paths share one push per window;
// a failed push releases the claim.
func (t *Tracker) pushGuarded(ctx context.Context, orderID int64, sample kernel.LocationSample, filterDistance bool) error {
	t.mu.Lock()
	now := t.now()
	if !t.lastPushedAt.IsZero() && now.Sub(t.lastPushedAt) < t.throttle {
		t.mu.Unlock()
		metrics.LocationPushesThrottledTotal.Inc()
		return nil
	}
	if filterDistance && t.lastSample != nil {
		dist, err := t.lastSample.Point.DistanceMeters(sample.Point)
		if err == nil && dist < t.minDistance {
			t.mu.Unlock()
			return nil
		}
	}
	prevPushedAt, prevSample := t.lastPushedAt, t.lastSample
	t.lastPushedAt = now
	t.lastSample = &sample
	t.mu.Unlock()

	if err := t.pusher.Push(ctx, orderID, sample); err != nil {
		t.logger.WarnContext(ctx, "location push failed", "order_id", orderID, "error", err)
		t.mu.Lock()
		if t.lastPushedAt.Equal(now) {
			t.lastPushedAt = prevPushedAt
			t.lastSample = prevSample
		}
		t.mu.Unlock()
		return err
	}

	metrics.LocationPushesTotal.Inc()
	return nil
}

func (t *Tracker) push(ctx context.Context, orderID int64, sample kernel.LocationSample) error {
	if err := t.pusher.Push(ctx, orderID, sample); err != nil {
		t.logger.WarnContext(ctx, "location push failed", "order_id", orderID, "error", err)
		return err
	}

	metrics.LocationPushesTotal.Inc()

	t.mu.Lock()
	t.lastPushedAt = t.now()
	t.lastSample = &sample
	t.mu.Unlock()

	return nil
}

func (t *Tracker) setModeLocked(mode Mode, orderID int64) {
	if t.mode != mode {
		t.logger.Info("tracker mode changed",
			"from", t.mode.String(), "to", mode.String(), "order_id", orderID)
	}
	t.mode = mode
	t.orderID = orderID
}
