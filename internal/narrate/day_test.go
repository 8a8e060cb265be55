package narrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runnerr0/retrace/internal/storage"
)

func devEntry(secs int64) storage.ActivityEntry {
	return storage.ActivityEntry{AppName: "Xcode", Category: "Development", DurationSecs: secs}
}

func TestDayNoEntries(t *testing.T) {
	assert.Equal(t, "No activity recorded for this day.", Day(nil, 0, nil, 0))
}

func TestDaySingleActivity(t *testing.T) {
	entries := []storage.ActivityEntry{devEntry(1500)}
	apps := []storage.AppDuration{{AppName: "Xcode", Seconds: 1500}}

	got := Day(entries, 1500, apps, 0.95)

	assert.Contains(t, got, "You spent 25m on screen across 1 activity, mostly in Xcode.")
	assert.Contains(t, got, "Development took the biggest share at 100% of your screen time.")
	assert.Contains(t, got, "It was a highly productive day.")
	// Under the 30-minute floor, no development closer.
	assert.NotContains(t, got, "focused development")
}

func TestDayMultipleAppsClause(t *testing.T) {
	entries := []storage.ActivityEntry{devEntry(600), devEntry(600)}

	two := Day(entries, 1200, []storage.AppDuration{
		{AppName: "Xcode", Seconds: 600}, {AppName: "Safari", Seconds: 600},
	}, 0.6)
	assert.Contains(t, two, "2 activities, mostly in Xcode and Safari.")

	three := Day(entries, 1200, []storage.AppDuration{
		{AppName: "Xcode", Seconds: 400}, {AppName: "Safari", Seconds: 400}, {AppName: "Slack", Seconds: 400},
	}, 0.6)
	assert.Contains(t, three, "mostly in Xcode, Safari, and Slack.")
}

func TestDayProductivityTiers(t *testing.T) {
	entries := []storage.ActivityEntry{devEntry(600)}

	tests := []struct {
		score float64
		want  string
	}{
		{0.9, "It was a highly productive day."},
		{0.75, "It was a highly productive day."},
		{0.6, "It was a fairly productive day."},
		{0.3, "It was a mixed day of work and leisure."},
		{0.1, "The day leaned toward leisure."},
	}

	for _, tt := range tests {
		got := Day(entries, 600, nil, tt.score)
		assert.Contains(t, got, tt.want, "score %v", tt.score)
	}
}

func TestDayCategoryClosers(t *testing.T) {
	entries := []storage.ActivityEntry{
		devEntry(3600),
		{AppName: "Slack", Category: "Communication", DurationSecs: 1200},
	}

	got := Day(entries, 4800, nil, 0.8)
	assert.Contains(t, got, "You put in 1h of focused development.")
	assert.Contains(t, got, "20m went to staying in touch.")
}

func TestDayClosersRespectFloors(t *testing.T) {
	entries := []storage.ActivityEntry{
		devEntry(600), // under 30m
		{AppName: "Slack", Category: "Communication", DurationSecs: 300}, // under 15m
	}

	got := Day(entries, 900, nil, 0.8)
	assert.NotContains(t, got, "focused development")
	assert.NotContains(t, got, "staying in touch")
}

func TestDayDominantShareRounding(t *testing.T) {
	entries := []storage.ActivityEntry{
		devEntry(2000),
		{AppName: "Safari", Category: "Browsing", DurationSecs: 1000},
	}

	got := Day(entries, 3000, nil, 0.5)
	assert.Contains(t, got, "Development took the biggest share at 67% of your screen time.")
}

func TestDayIsOneParagraph(t *testing.T) {
	entries := []storage.ActivityEntry{devEntry(3600)}
	got := Day(entries, 3600, nil, 0.9)
	assert.False(t, strings.Contains(got, "\n"))
}
