package capture

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/retrace/internal/storage"
)

type fakeScreen struct {
	data []byte
	err  error
}

func (f *fakeScreen) CaptureActiveWindow(ctx context.Context) ([]byte, error) {
	return f.data, f.err
}

type fakeWindows struct {
	mu  sync.Mutex
	win *WindowInfo
	err error
}

func (f *fakeWindows) FrontmostWindow(ctx context.Context) (*WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.win == nil {
		return nil, nil
	}
	cp := *f.win
	return &cp, nil
}

func (f *fakeWindows) set(win *WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.win = win
}

type fakeOCR struct {
	res *TextResult
}

func (f *fakeOCR) RecognizeText(ctx context.Context, image []byte) (*TextResult, error) {
	return f.res, nil
}

type fakePerms struct {
	mu        sync.Mutex
	granted   bool
	requested int
	revoked   []func()
}

func (f *fakePerms) Granted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted
}

func (f *fakePerms) Request() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested++
}

func (f *fakePerms) OnRevoked(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, fn)
}

func (f *fakePerms) revoke() {
	f.mu.Lock()
	fns := append([]func(){}, f.revoked...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type fakeSink struct {
	mu      sync.Mutex
	samples []*storage.RawSample
	err     error
}

func (f *fakeSink) InsertSample(ctx context.Context, sample *storage.RawSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *sample
	f.samples = append(f.samples, &cp)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func (f *fakeSink) last() *storage.RawSample {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.samples) == 0 {
		return nil
	}
	return f.samples[len(f.samples)-1]
}

type fakeSaver struct {
	path string
	err  error
}

func (f *fakeSaver) Save(ts time.Time, data []byte) (string, error) {
	return f.path, f.err
}

type schedulerFixture struct {
	screen  *fakeScreen
	windows *fakeWindows
	ocr     *fakeOCR
	perms   *fakePerms
	sink    *fakeSink
	saver   *fakeSaver
	sched   *Scheduler
}

func newFixture(t *testing.T, opts Options) *schedulerFixture {
	t.Helper()

	f := &schedulerFixture{
		screen:  &fakeScreen{data: []byte("png")},
		windows: &fakeWindows{win: &WindowInfo{AppName: "Xcode", AppID: "com.apple.dt.Xcode", WindowTitle: "main.swift"}},
		ocr:     &fakeOCR{},
		perms:   &fakePerms{granted: true},
		sink:    &fakeSink{},
		saver:   &fakeSaver{path: "/tmp/cap.png"},
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	f.sched = NewScheduler(f.screen, f.windows, f.ocr, f.perms, f.sink, f.saver, opts)
	t.Cleanup(f.sched.Stop)
	return f
}

func TestSchedulerStartAndStop(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	assert.Equal(t, StateIdle, f.sched.Status().State)
	require.NoError(t, f.sched.Start())
	assert.Equal(t, StateCapturing, f.sched.Status().State)

	// Starting again is a no-op.
	require.NoError(t, f.sched.Start())

	f.sched.Stop()
	assert.Equal(t, StateIdle, f.sched.Status().State)
}

func TestSchedulerPermissionDenied(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})
	f.perms.granted = false

	err := f.sched.Start()
	require.Error(t, err)
	assert.Equal(t, StatePermissionDenied, f.sched.Status().State)

	f.perms.mu.Lock()
	requested := f.perms.requested
	f.perms.mu.Unlock()
	assert.Equal(t, 1, requested)
	assert.Zero(t, f.sink.count())
}

func TestSchedulerPauseAndResume(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	// Pause before start is a no-op.
	f.sched.Pause()
	assert.Equal(t, StateIdle, f.sched.Status().State)

	require.NoError(t, f.sched.Start())
	f.sched.Pause()
	assert.Equal(t, StatePaused, f.sched.Status().State)

	// Resume only applies to the paused state.
	f.sched.Resume()
	assert.Equal(t, StateCapturing, f.sched.Status().State)
	f.sched.Resume()
	assert.Equal(t, StateCapturing, f.sched.Status().State)
}

func TestSchedulerStartWhilePausedResumes(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	require.NoError(t, f.sched.Start())
	f.sched.Pause()

	// Start from paused must not spawn a second run loop; one exists already.
	require.NoError(t, f.sched.Start())
	assert.Equal(t, StateCapturing, f.sched.Status().State)

	done := make(chan struct{})
	go func() {
		f.sched.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, StateIdle, f.sched.Status().State)
}

func TestSchedulerToggle(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	require.NoError(t, f.sched.Toggle())
	assert.Equal(t, StateCapturing, f.sched.Status().State)
	require.NoError(t, f.sched.Toggle())
	assert.Equal(t, StatePaused, f.sched.Status().State)
	require.NoError(t, f.sched.Toggle())
	assert.Equal(t, StateCapturing, f.sched.Status().State)
}

func TestSchedulerTickPersistsSample(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond, OCREnabled: true})
	f.ocr.res = &TextResult{
		FullText: "import Foundation",
		Regions:  []TextRegion{{Text: "import Foundation", Confidence: 0.8}, {Text: "x", Confidence: 1.0}},
	}

	require.NoError(t, f.sched.Start())

	require.Eventually(t, func() bool { return f.sink.count() > 0 }, time.Second, 5*time.Millisecond)

	got := f.sink.last()
	assert.Equal(t, "Xcode", got.AppName)
	assert.Equal(t, "com.apple.dt.Xcode", got.AppID)
	assert.Equal(t, "main.swift", got.WindowTitle)
	assert.Equal(t, "import Foundation", got.OCRText)
	assert.InDelta(t, 0.9, got.OCRConfidence, 1e-9)
	assert.Equal(t, "/tmp/cap.png", got.ImagePath)
}

func TestSchedulerOCRDisabled(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond, OCREnabled: false})
	f.ocr.res = &TextResult{FullText: "should not appear"}

	require.NoError(t, f.sched.Start())
	require.Eventually(t, func() bool { return f.sink.count() > 0 }, time.Second, 5*time.Millisecond)

	assert.Empty(t, f.sink.last().OCRText)
}

func TestSchedulerExclusionSkipsWholeTick(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond, Excluded: []string{"1Password"}})
	f.windows.set(&WindowInfo{AppName: "1Password", AppID: "com.1password.app"})

	require.NoError(t, f.sched.Start())
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.sink.count())

	// Switching to a non-excluded app resumes sampling.
	f.windows.set(&WindowInfo{AppName: "Xcode", AppID: "com.apple.dt.Xcode"})
	require.Eventually(t, func() bool { return f.sink.count() > 0 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerExclusionMatchesIdentifier(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond, Excluded: []string{"com.agilebits.onepassword7"}})
	f.windows.set(&WindowInfo{AppName: "Some Vault", AppID: "com.agilebits.onepassword7"})

	require.NoError(t, f.sched.Start())
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.sink.count())
}

func TestSchedulerMetadataFailureSkipsTick(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond})
	f.windows.err = errors.New("no frontmost window")

	require.NoError(t, f.sched.Start())
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.sink.count())
	assert.Equal(t, StateCapturing, f.sched.Status().State)
}

func TestSchedulerPersistFailureHalts(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond})
	f.sink.err = errors.New("disk full")

	require.NoError(t, f.sched.Start())

	require.Eventually(t, func() bool {
		return f.sched.Status().State == StateError
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "disk full", f.sched.Status().Reason)

	// Halted: no new attempts land after the failure.
	f.sink.mu.Lock()
	f.sink.err = nil
	f.sink.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.sink.count())
}

func TestSchedulerRestartAfterError(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond})
	f.sink.err = errors.New("disk full")

	require.NoError(t, f.sched.Start())
	require.Eventually(t, func() bool {
		return f.sched.Status().State == StateError
	}, time.Second, 5*time.Millisecond)

	f.sink.mu.Lock()
	f.sink.err = nil
	f.sink.mu.Unlock()

	require.NoError(t, f.sched.Start())
	require.Eventually(t, func() bool { return f.sink.count() > 0 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerSetIntervalFiresImmediately(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	require.NoError(t, f.sched.Start())
	assert.Zero(t, f.sink.count())

	f.sched.SetInterval(time.Hour)

	require.Eventually(t, func() bool { return f.sink.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerSetIntervalRejectsNonPositive(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})
	require.NoError(t, f.sched.Start())

	f.sched.SetInterval(0)
	f.sched.SetInterval(-time.Second)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.sink.count())
}

func TestSchedulerPermissionRevocationStops(t *testing.T) {
	f := newFixture(t, Options{Interval: time.Hour})

	require.NoError(t, f.sched.Start())
	f.perms.revoke()

	assert.Equal(t, StateIdle, f.sched.Status().State)
}

func TestSchedulerOnSampleCallback(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond})

	var mu sync.Mutex
	var gotPath string
	f.sched.SetOnSample(func(sample *storage.RawSample, imagePath string) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = imagePath
	})

	require.NoError(t, f.sched.Start())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotPath == "/tmp/cap.png"
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerImageSaveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, Options{Interval: 5 * time.Millisecond})
	f.saver.err = errors.New("disk full")

	require.NoError(t, f.sched.Start())
	require.Eventually(t, func() bool { return f.sink.count() > 0 }, time.Second, 5*time.Millisecond)

	assert.Empty(t, f.sink.last().ImagePath)
	assert.Equal(t, StateCapturing, f.sched.Status().State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "capturing", StateCapturing.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "permission-denied", StatePermissionDenied.String())
	assert.Equal(t, "unknown", State(99).String())
}
