package capture

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/runnerr0/retrace/internal/storage"
)

// State is the scheduler's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StatePaused
	StateError
	StatePermissionDenied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	case StatePermissionDenied:
		return "permission-denied"
	default:
		return "unknown"
	}
}

// Status is the externally visible scheduler state plus the error reason
// when State is StateError.
type Status struct {
	State  State
	Reason string
}

// Options configures a Scheduler.
type Options struct {
	Interval   time.Duration
	Excluded   []string // app names or identifiers, case-insensitive
	OCREnabled bool
	Logger     *log.Logger
}

// Scheduler paces raw sampling. Ticks run on their own goroutine, never on
// the caller's; a persistence failure moves the scheduler to the error state
// and halts it until it is explicitly restarted.
type Scheduler struct {
	screen  ScreenSource
	windows WindowReader
	ocr     TextRecognizer
	perms   PermissionGate
	sink    SampleSink
	images  ImageSaver
	logger  *log.Logger

	mu         sync.Mutex
	state      State
	reason     string
	interval   time.Duration
	excluded   map[string]struct{}
	ocrEnabled bool
	onSample   func(sample *storage.RawSample, imagePath string)
	stop       chan struct{}
	revokeOnce sync.Once

	wg sync.WaitGroup
}

// NewScheduler wires a Scheduler from its collaborators.
func NewScheduler(screen ScreenSource, windows WindowReader, ocr TextRecognizer, perms PermissionGate, sink SampleSink, images ImageSaver, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scheduler{
		screen:     screen,
		windows:    windows,
		ocr:        ocr,
		perms:      perms,
		sink:       sink,
		images:     images,
		logger:     opts.Logger,
		interval:   opts.Interval,
		excluded:   exclusionSet(opts.Excluded),
		ocrEnabled: opts.OCREnabled,
	}
}

func exclusionSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// SetOnSample registers the post-write callback invoked after each
// successfully persisted sample.
func (s *Scheduler) SetOnSample(fn func(sample *storage.RawSample, imagePath string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSample = fn
}

// Status returns the current state and, for the error state, its reason.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{State: s.state, Reason: s.reason}
}

// Start begins capturing. It fails when the permission gate denies capture,
// leaving the scheduler in the permission-denied state with a request filed.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCapturing {
		return nil
	}
	if s.state == StatePaused {
		// The run loop is still alive while paused. Spawning a second one
		// would orphan the first, so this is just a resume.
		s.state = StateCapturing
		return nil
	}

	if !s.perms.Granted() {
		s.state = StatePermissionDenied
		s.perms.Request()
		return fmt.Errorf("capture permission not granted")
	}

	s.revokeOnce.Do(func() {
		s.perms.OnRevoked(func() {
			s.logger.Printf("capture permission revoked, stopping")
			s.Stop()
		})
	})

	s.state = StateCapturing
	s.reason = ""
	s.startLoopLocked(false)
	return nil
}

// Pause suspends ticks without tearing down the timer. A no-op outside the
// capturing state.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing {
		s.state = StatePaused
	}
}

// Resume continues after Pause. A no-op outside the paused state.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePaused {
		s.state = StateCapturing
	}
}

// Stop cancels the timer and returns to idle. An in-flight tick is allowed
// to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.state = StateIdle
	s.reason = ""
	s.mu.Unlock()

	s.wg.Wait()
}

// Toggle dispatches to Pause, Resume, or Start depending on the current
// state.
func (s *Scheduler) Toggle() error {
	switch s.Status().State {
	case StateCapturing:
		s.Pause()
		return nil
	case StatePaused:
		s.Resume()
		return nil
	default:
		return s.Start()
	}
}

// SetInterval changes the sampling interval. While capturing, the timer is
// torn down and rescheduled so the change takes effect on the very next
// tick, which fires immediately instead of waiting a full period.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.interval = interval
	if s.state == StateCapturing || s.state == StatePaused {
		if s.stop != nil {
			close(s.stop)
			s.stop = nil
		}
		s.startLoopLocked(true)
	}
}

// SetExcluded replaces the exclusion set.
func (s *Scheduler) SetExcluded(names []string) {
	set := exclusionSet(names)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.excluded = set
}

// SetOCREnabled toggles text extraction for subsequent ticks.
func (s *Scheduler) SetOCREnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ocrEnabled = enabled
}

// startLoopLocked launches the tick loop. Caller holds s.mu.
func (s *Scheduler) startLoopLocked(fireNow bool) {
	stop := make(chan struct{})
	s.stop = stop
	s.wg.Add(1)
	go s.run(s.interval, stop, fireNow)
}

func (s *Scheduler) run(interval time.Duration, stop chan struct{}, fireNow bool) {
	defer s.wg.Done()

	if fireNow {
		s.maybeTick()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.maybeTick()
		}
	}
}

func (s *Scheduler) maybeTick() {
	if s.Status().State != StateCapturing {
		return
	}
	s.tick(context.Background())
}

// tick performs one sample: metadata first (cheap), exclusion filter, then
// screenshot, optional text extraction, image write, and the store insert.
// Acquisition failures skip the tick; a store write failure is fatal for the
// scheduler until restart.
func (s *Scheduler) tick(ctx context.Context) {
	win, err := s.windows.FrontmostWindow(ctx)
	if err != nil || win == nil {
		return
	}

	if s.isExcluded(win) {
		return
	}

	image, err := s.screen.CaptureActiveWindow(ctx)
	if err != nil || len(image) == 0 {
		return
	}

	sample := &storage.RawSample{
		Timestamp:   time.Now(),
		AppName:     win.AppName,
		AppID:       win.AppID,
		WindowTitle: win.WindowTitle,
		PageURL:     win.PageURL,
	}

	s.mu.Lock()
	ocrEnabled := s.ocrEnabled
	s.mu.Unlock()

	if ocrEnabled && s.ocr != nil {
		if res, err := s.ocr.RecognizeText(ctx, image); err == nil && res != nil {
			sample.OCRText = res.FullText
			sample.OCRConfidence = res.MeanConfidence()
		}
	}

	if s.images != nil {
		path, err := s.images.Save(sample.Timestamp, image)
		if err != nil {
			s.logger.Printf("save capture image: %v", err)
		} else {
			sample.ImagePath = path
		}
	}

	if err := s.sink.InsertSample(ctx, sample); err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	cb := s.onSample
	s.mu.Unlock()
	if cb != nil {
		cb(sample, sample.ImagePath)
	}
}

func (s *Scheduler) isExcluded(win *WindowInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.excluded[strings.ToLower(win.AppName)]; ok {
		return true
	}
	if _, ok := s.excluded[strings.ToLower(win.AppID)]; ok {
		return true
	}
	return false
}

// fail records the error state and halts the timer until the caller
// restarts the scheduler.
func (s *Scheduler) fail(err error) {
	s.logger.Printf("persist sample: %v", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateError
	s.reason = err.Error()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
