package narrate

import (
	"fmt"
	"time"
)

// FormatDuration renders screen time the same way everywhere: seconds only
// below a minute, minutes (and leftover seconds) below an hour, hours (and
// leftover minutes) from an hour up. Zero sub-units are omitted.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())

	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		m := secs / 60
		s := secs % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		h := secs / 3600
		m := (secs % 3600) / 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatSeconds is FormatDuration for stored integer seconds.
func FormatSeconds(secs int64) string {
	return FormatDuration(time.Duration(secs) * time.Second)
}
