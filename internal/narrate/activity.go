package narrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/retrace/internal/classify"
)

// codeMarkers are source-text fragments that let a development activity be
// described as writing code rather than generically.
var codeMarkers = []string{"import ", "func ", "class ", "struct ", "def ", "#include"}

// genericVerbs back the fallback sentence when no richer context is
// available.
var genericVerbs = map[classify.Category]string{
	classify.Development:   "developing",
	classify.Productivity:  "organizing work",
	classify.Research:      "reading",
	classify.Communication: "communicating",
	classify.Browsing:      "browsing",
	classify.Social:        "scrolling feeds",
	classify.Entertainment: "relaxing",
	classify.Other:         "working",
}

// Activity produces a short sentence describing one classified run of
// samples. It prefers category-specific phrasing with the window title, and
// falls back to a generic template when neither a title nor a recognizable
// text pattern is present.
func Activity(appName, windowTitle, text string, cat classify.Category, dur time.Duration) string {
	d := FormatDuration(dur)
	title := strings.TrimSpace(windowTitle)

	switch cat {
	case classify.Development:
		if hasCodeMarker(text) {
			return fmt.Sprintf("Wrote code in %s for %s", appName, d)
		}
		if title != "" {
			return fmt.Sprintf("Worked on %s in %s for %s", title, appName, d)
		}
	case classify.Communication:
		if title != "" {
			return fmt.Sprintf("Caught up on %s in %s for %s", title, appName, d)
		}
		return fmt.Sprintf("Kept in touch via %s for %s", appName, d)
	case classify.Productivity:
		if title != "" {
			return fmt.Sprintf("Organized %s in %s for %s", title, appName, d)
		}
	case classify.Research:
		if title != "" {
			return fmt.Sprintf("Read %s in %s for %s", title, appName, d)
		}
	case classify.Browsing:
		if title != "" {
			return fmt.Sprintf("Browsed %s for %s", title, d)
		}
		return fmt.Sprintf("Browsed the web in %s for %s", appName, d)
	case classify.Social:
		if title != "" {
			return fmt.Sprintf("Checked %s for %s", title, d)
		}
	case classify.Entertainment:
		if title != "" {
			return fmt.Sprintf("Watched or listened to %s for %s", title, d)
		}
		return fmt.Sprintf("Unwound with %s for %s", appName, d)
	}

	verb := genericVerbs[cat]
	if verb == "" {
		verb = genericVerbs[classify.Other]
	}
	return fmt.Sprintf("Spent %s %s in %s", d, verb, appName)
}

func hasCodeMarker(text string) bool {
	for _, m := range codeMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
