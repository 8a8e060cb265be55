package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// SystemScreenSource captures the active screen using the OS capture tool:
// screencapture on macOS, import (ImageMagick) on Linux.
type SystemScreenSource struct{}

// CaptureActiveWindow shells out to the platform capture tool and returns
// the image bytes.
func (SystemScreenSource) CaptureActiveWindow(ctx context.Context) ([]byte, error) {
	tmpFile, err := os.CreateTemp("", "retrace-capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "screencapture", "-x", tmpPath)
	case "linux":
		cmd = exec.CommandContext(ctx, "import", "-silent", "-window", "root", tmpPath)
	default:
		return nil, fmt.Errorf("unsupported OS for screen capture: %s", runtime.GOOS)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("screen capture failed: %s: %w", strings.TrimSpace(string(output)), err)
	}

	return os.ReadFile(tmpPath)
}

// frontmostScript asks System Events for the frontmost process and its
// focused window title.
const frontmostScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	set appID to bundle identifier of frontApp
	set winTitle to ""
	try
		set winTitle to name of front window of frontApp
	end try
end tell
return appName & "\n" & appID & "\n" & winTitle`

// SystemWindowReader reads frontmost-window metadata via osascript on macOS
// and xdotool on Linux.
type SystemWindowReader struct{}

// FrontmostWindow returns the active app's name, identifier, and window
// title.
func (SystemWindowReader) FrontmostWindow(ctx context.Context) (*WindowInfo, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.CommandContext(ctx, "osascript", "-e", frontmostScript).Output()
		if err != nil {
			return nil, fmt.Errorf("read frontmost window: %w", err)
		}
		lines := strings.SplitN(strings.TrimRight(string(out), "\n"), "\n", 3)
		info := &WindowInfo{}
		if len(lines) > 0 {
			info.AppName = lines[0]
		}
		if len(lines) > 1 {
			info.AppID = lines[1]
		}
		if len(lines) > 2 {
			info.WindowTitle = lines[2]
		}
		return info, nil
	case "linux":
		out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowname").Output()
		if err != nil {
			return nil, fmt.Errorf("read active window: %w", err)
		}
		title := strings.TrimSpace(string(out))
		return &WindowInfo{AppName: title, WindowTitle: title}, nil
	default:
		return nil, fmt.Errorf("unsupported OS for window metadata: %s", runtime.GOOS)
	}
}

// SystemPermissionGate approximates the platform permission check. On macOS
// the real gate is the Screen Recording permission; shelling out to the
// capture tool surfaces a denial as a capture failure, so Granted probes
// the window reader instead.
type SystemPermissionGate struct {
	mu      sync.Mutex
	revoked []func()
}

// Granted reports whether window metadata can currently be read.
func (g *SystemPermissionGate) Granted() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := SystemWindowReader{}.FrontmostWindow(ctx)
	return err == nil
}

// Request prints guidance; the OS owns the actual permission prompt.
func (g *SystemPermissionGate) Request() {
	fmt.Fprintln(os.Stderr, "retrace needs screen access: grant Screen Recording (macOS) or install xdotool (Linux)")
}

// OnRevoked registers a callback for asynchronous permission revocation.
func (g *SystemPermissionGate) OnRevoked(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revoked = append(g.revoked, fn)
}

// Revoke fires the registered revocation callbacks.
func (g *SystemPermissionGate) Revoke() {
	g.mu.Lock()
	fns := append([]func(){}, g.revoked...)
	g.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ExecTextRecognizer runs a user-configured OCR command, feeding it the
// image on stdin and expecting a JSON TextResult document on stdout. The
// recognizer itself is an external black box.
type ExecTextRecognizer struct {
	Command []string
}

type execOCRResult struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Regions  []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		W          float64 `json:"w"`
		H          float64 `json:"h"`
	} `json:"regions"`
}

// RecognizeText pipes the image through the configured command.
func (r ExecTextRecognizer) RecognizeText(ctx context.Context, image []byte) (*TextResult, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("no OCR command configured")
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdin = strings.NewReader(string(image))
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run OCR command: %w", err)
	}

	var parsed execOCRResult
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse OCR output: %w", err)
	}

	result := &TextResult{
		FullText: parsed.Text,
		Language: parsed.Language,
		Elapsed:  time.Since(start),
	}
	for _, reg := range parsed.Regions {
		result.Regions = append(result.Regions, TextRegion{
			Text:       reg.Text,
			Confidence: reg.Confidence,
			X:          reg.X, Y: reg.Y, W: reg.W, H: reg.H,
		})
	}
	return result, nil
}
