// Package capture owns the sampling timer: on each tick it reads the
// frontmost window, filters excluded apps, optionally extracts text, and
// persists one raw sample.
package capture

import (
	"context"
	"time"

	"github.com/runnerr0/retrace/internal/storage"
)

// WindowInfo is the cheap frontmost-window metadata read at the start of
// every tick.
type WindowInfo struct {
	AppName     string
	AppID       string
	WindowTitle string
	PageURL     string // set when the frontmost app exposes a browser URL
}

// TextRegion is one recognized text block with its confidence and a
// normalized bounding box.
type TextRegion struct {
	Text       string
	Confidence float64
	X, Y, W, H float64
}

// TextResult is the output of the text recognizer for one image.
type TextResult struct {
	FullText string
	Regions  []TextRegion
	Language string
	Elapsed  time.Duration
}

// MeanConfidence averages the per-region confidences; zero regions yield 0.
func (r *TextResult) MeanConfidence() float64 {
	if r == nil || len(r.Regions) == 0 {
		return 0
	}
	var sum float64
	for _, reg := range r.Regions {
		sum += reg.Confidence
	}
	return sum / float64(len(r.Regions))
}

// ScreenSource captures the active window as image bytes. OS-specific
// implementations live outside this module.
type ScreenSource interface {
	CaptureActiveWindow(ctx context.Context) ([]byte, error)
}

// WindowReader reads frontmost-window metadata without taking a screenshot.
type WindowReader interface {
	FrontmostWindow(ctx context.Context) (*WindowInfo, error)
}

// TextRecognizer extracts text from captured image bytes.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) (*TextResult, error)
}

// PermissionGate guards capture start. The revocation callback may fire
// asynchronously; the scheduler stops capturing when it does.
type PermissionGate interface {
	Granted() bool
	Request()
	OnRevoked(fn func())
}

// SampleSink persists raw samples. *storage.SQLiteStore satisfies it.
type SampleSink interface {
	InsertSample(ctx context.Context, sample *storage.RawSample) error
}

// ImageSaver stores capture image bytes and returns their path.
// *artifacts.Store satisfies it.
type ImageSaver interface {
	Save(ts time.Time, data []byte) (string, error)
}
