package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/kernel"
)

type stubProvider struct {
	mu      sync.Mutex
	samples []kernel.LocationSample
	err     error
	calls   int
}

func (p *stubProvider) CurrentLocation(_ context.Context) (kernel.LocationSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return kernel.LocationSample{}, p.err
	}
	sample := p.samples[0]
	if len(p.samples) > 1 {
		p.samples = p.samples[1:]
	}
	return sample, nil
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []kernel.LocationSample
	err    error
}

func (p *recordingPusher) Push(_ context.Context, _ int64, sample kernel.LocationSample) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushes = append(p.pushes, sample)
	return nil
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

type stubScheduler struct {
	mu       sync.Mutex
	started  int
	stopped  int
	startErr error
}

func (s *stubScheduler) Start(_ func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	return nil
}

func (s *stubScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped++
}

func sampleAt(t *testing.T, lat, lng float64) kernel.LocationSample {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	sample, err := kernel.NewLocationSample(point, 5, time.Now().UTC())
	require.NoError(t, err)
	return sample
}

type trackerFixture struct {
	tracker   *Tracker
	provider  *stubProvider
	pusher    *recordingPusher
	scheduler *stubScheduler
	clock     *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTrackerFixture(t *testing.T, samples []kernel.LocationSample, opts ...Option) *trackerFixture {
	t.Helper()

	provider := &stubProvider{samples: samples}
	pusher := &recordingPusher{}
	scheduler := &stubScheduler{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	tracker, err := NewTracker(provider, pusher, scheduler, slog.Default(), opts...)
	require.NoError(t, err)

	return &trackerFixture{
		tracker:   tracker,
		provider:  provider,
		pusher:    pusher,
		scheduler: scheduler,
		clock:     clock,
	}
}

func Test_NewTracker_RequiresDependencies(t *testing.T) {
	_, err := NewTracker(nil, &recordingPusher{}, &stubScheduler{}, slog.Default())
	assert.Error(t, err)

	_, err = NewTracker(&stubProvider{}, nil, &stubScheduler{}, slog.Default())
	assert.Error(t, err)

	_, err = NewTracker(&stubProvider{}, &recordingPusher{}, nil, slog.Default())
	assert.Error(t, err)
}

func Test_Tracker_StartsInactive(t *testing.T) {
	f := newTrackerFixture(t, nil)

	assert.Equal(t, ModeInactive, f.tracker.Mode())
}

func Test_Tracker_Tick_IsIgnoredWhileInactive(t *testing.T) {
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})

	err := f.tracker.Tick(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, 0, f.pusher.count())
}

func Test_Tracker_ForegroundTick_PushesFirstSample(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartForeground(7))

	// Act
	err := f.tracker.Tick(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_Tick_ThrottlesRapidUpdates(t *testing.T) {
	// Arrange: distinct far-apart positions so only the throttle can filter
	samples := []kernel.LocationSample{
		sampleAt(t, 10, 10), sampleAt(t, 11, 11), sampleAt(t, 12, 12),
		sampleAt(t, 13, 13), sampleAt(t, 14, 14), sampleAt(t, 15, 15),
		sampleAt(t, 16, 16), sampleAt(t, 17, 17), sampleAt(t, 18, 18),
		sampleAt(t, 19, 19),
	}
	f := newTrackerFixture(t, samples)
	require.NoError(t, f.tracker.StartForeground(7))

	// Act: ten ticks within one second
	for range 10 {
		require.NoError(t, f.tracker.Tick(context.Background()))
		f.clock.Advance(100 * time.Millisecond)
	}

	// Assert: only the first push goes through
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_Tick_PushesAgainAfterThrottleWindow(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10), sampleAt(t, 11, 11)})
	require.NoError(t, f.tracker.StartForeground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Act
	f.clock.Advance(11 * time.Second)
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Assert
	assert.Equal(t, 2, f.pusher.count())
}

func Test_Tracker_Tick_SkipsSmallMovements(t *testing.T) {
	// Arrange: second sample ~11m east of the first, below the 50m minimum
	f := newTrackerFixture(t, []kernel.LocationSample{
		sampleAt(t, 10, 10),
		sampleAt(t, 10, 10.0001),
	})
	require.NoError(t, f.tracker.StartForeground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Act: past the throttle window, so only distance can filter
	f.clock.Advance(time.Minute)
	err := f.tracker.Tick(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_Tick_ConcurrentPathsShareThrottleWindow(t *testing.T) {
	// Arrange: distinct far-apart positions so only the throttle can filter
	samples := []kernel.LocationSample{
		sampleAt(t, 10, 10), sampleAt(t, 11, 11),
		sampleAt(t, 12, 12), sampleAt(t, 13, 13),
	}
	f := newTrackerFixture(t, samples)
	require.NoError(t, f.tracker.StartForeground(7))

	// Act: four sampling paths fire at once
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.tracker.Tick(context.Background())
		}()
	}
	wg.Wait()

	// Assert: the window is claimed exactly once
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_Tick_FailedPushReleasesThrottleWindow(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartForeground(7))
	f.pusher.err = errors.New("server unreachable")
	require.Error(t, f.tracker.Tick(context.Background()))

	// Act: retry right away, still inside the window
	f.pusher.err = nil
	f.clock.Advance(100 * time.Millisecond)
	err := f.tracker.Tick(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_Tick_SurfacesProviderError(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)
	f.provider.err = errors.New("gps unavailable")
	require.NoError(t, f.tracker.StartForeground(7))

	// Act
	err := f.tracker.Tick(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Equal(t, 0, f.pusher.count())
}

func Test_Tracker_RefreshNow_BypassesFilters(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartForeground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Act: immediately after a push, inside the throttle window, same position
	err := f.tracker.RefreshNow(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, f.pusher.count())
}

func Test_Tracker_RefreshNow_SurfacesPushError(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartForeground(7))
	f.pusher.err = errors.New("server unreachable")

	// Act
	err := f.tracker.RefreshNow(context.Background())

	// Assert
	assert.ErrorContains(t, err, "server unreachable")
}

func Test_Tracker_RefreshNow_FailsWhileInactive(t *testing.T) {
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})

	err := f.tracker.RefreshNow(context.Background())

	assert.Error(t, err)
}

func Test_Tracker_StartBackground_StartsScheduler(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)

	// Act
	err := f.tracker.StartBackground(7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ModeBackgroundTracking, f.tracker.Mode())
	assert.Equal(t, 1, f.scheduler.started)
}

func Test_Tracker_StartBackground_IsIdempotentForSameOrder(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)
	require.NoError(t, f.tracker.StartBackground(7))

	// Act
	require.NoError(t, f.tracker.StartBackground(7))

	// Assert
	assert.Equal(t, 1, f.scheduler.started)
}

func Test_Tracker_StartBackground_PropagatesSchedulerError(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)
	f.scheduler.startErr = errors.New("cron start failed")

	// Act
	err := f.tracker.StartBackground(7)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, ModeInactive, f.tracker.Mode())
}

func Test_Tracker_OnAppBackground_SwitchesForegroundToBackground(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)
	require.NoError(t, f.tracker.StartForeground(7))

	// Act
	err := f.tracker.OnAppBackground()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ModeBackgroundTracking, f.tracker.Mode())
	assert.Equal(t, 1, f.scheduler.started)
}

func Test_Tracker_OnAppResume_SwitchesToForegroundAndPushesOnce(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartBackground(7))

	// Act
	f.tracker.OnAppResume(context.Background())

	// Assert
	assert.Equal(t, ModeForegroundPolling, f.tracker.Mode())
	assert.Equal(t, 1, f.scheduler.stopped)
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_OnAppResume_RespectsThrottleWindow(t *testing.T) {
	// Arrange: a background tick pushed and armed the throttle
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10), sampleAt(t, 11, 11)})
	require.NoError(t, f.tracker.StartBackground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Act: resume inside the throttle window
	f.clock.Advance(2 * time.Second)
	f.tracker.OnAppResume(context.Background())

	// Assert: the resume refresh is suppressed
	assert.Equal(t, ModeForegroundPolling, f.tracker.Mode())
	assert.Equal(t, 1, f.pusher.count())
}

func Test_Tracker_OnAppResume_SkipsDistanceFilter(t *testing.T) {
	// Arrange: next position ~11m away, below the 50m minimum
	f := newTrackerFixture(t, []kernel.LocationSample{
		sampleAt(t, 10, 10),
		sampleAt(t, 10, 10.0001),
	})
	require.NoError(t, f.tracker.StartBackground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))
	f.clock.Advance(time.Minute)

	// Act
	f.tracker.OnAppResume(context.Background())

	// Assert: past the throttle window the resume refresh always pushes
	assert.Equal(t, 2, f.pusher.count())
}

func Test_Tracker_OnAppResume_IsNoOpWhileInactive(t *testing.T) {
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10)})

	f.tracker.OnAppResume(context.Background())

	assert.Equal(t, ModeInactive, f.tracker.Mode())
	assert.Equal(t, 0, f.pusher.count())
}

func Test_Tracker_Stop_ClearsFilterStateForNextSession(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, []kernel.LocationSample{sampleAt(t, 10, 10), sampleAt(t, 10, 10)})
	require.NoError(t, f.tracker.StartForeground(7))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Act: same position, inside the throttle window, but a fresh session
	f.tracker.Stop()
	require.NoError(t, f.tracker.StartForeground(8))
	require.NoError(t, f.tracker.Tick(context.Background()))

	// Assert
	assert.Equal(t, ModeForegroundPolling, f.tracker.Mode())
	assert.Equal(t, 2, f.pusher.count())
}

func Test_Tracker_Stop_StopsBackgroundScheduler(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t, nil)
	require.NoError(t, f.tracker.StartBackground(7))

	// Act
	f.tracker.Stop()

	// Assert
	assert.Equal(t, ModeInactive, f.tracker.Mode())
	assert.Equal(t, 1, f.scheduler.stopped)
}

func Test_Mode_String(t *testing.T) {
	assert.Equal(t, "inactive", ModeInactive.String())
	assert.Equal(t, "foreground_polling", ModeForegroundPolling.String())
	assert.Equal(t, "background_tracking", ModeBackgroundTracking.String())
}

func Test_Tracker_ForegroundLoop_PollsOnInterval(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t,
		[]kernel.LocationSample{sampleAt(t, 10, 10)},
		WithForegroundInterval(5*time.Millisecond),
	)

	// Act
	require.NoError(t, f.tracker.StartForeground(7))
	defer f.tracker.Stop()

	// Assert
	assert.Eventually(t, func() bool {
		return f.pusher.count() >= 1
	}, time.Second, 5*time.Millisecond)
}

func Test_Tracker_Stop_HaltsForegroundLoop(t *testing.T) {
	// Arrange
	f := newTrackerFixture(t,
		[]kernel.LocationSample{sampleAt(t, 10, 10)},
		WithForegroundInterval(5*time.Millisecond),
	)
	require.NoError(t, f.tracker.StartForeground(7))

	// Act
	f.tracker.Stop()
	time.Sleep(20 * time.Millisecond)
	pushed := f.pusher.count()
	time.Sleep(20 * time.Millisecond)

	// Assert
	assert.Equal(t, pushed, f.pusher.count())
}
