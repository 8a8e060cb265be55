package narrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/runnerr0/retrace/internal/classify"
)

func TestActivityDevelopment(t *testing.T) {
	got := Activity("Xcode", "main.swift", "import Foundation\nfunc main() {}", classify.Development, 25*time.Minute)
	assert.Equal(t, "Wrote code in Xcode for 25m", got)

	got = Activity("Xcode", "ProjectPlan.md", "release notes draft", classify.Development, 10*time.Minute)
	assert.Equal(t, "Worked on ProjectPlan.md in Xcode for 10m", got)
}

func TestActivityByCategory(t *testing.T) {
	tests := []struct {
		name  string
		app   string
		title string
		cat   classify.Category
		want  string
	}{
		{"communication with title", "Slack", "#eng-infra", classify.Communication, "Caught up on #eng-infra in Slack for 5m"},
		{"communication without title", "Messages", "", classify.Communication, "Kept in touch via Messages for 5m"},
		{"productivity", "Notion", "Q3 Roadmap", classify.Productivity, "Organized Q3 Roadmap in Notion for 5m"},
		{"research", "Preview", "attention-is-all-you-need.pdf", classify.Research, "Read attention-is-all-you-need.pdf in Preview for 5m"},
		{"browsing with title", "Safari", "Hacker News", classify.Browsing, "Browsed Hacker News for 5m"},
		{"browsing without title", "Safari", "", classify.Browsing, "Browsed the web in Safari for 5m"},
		{"social", "Twitter", "Home / X", classify.Social, "Checked Home / X for 5m"},
		{"entertainment with title", "Safari", "Lo-fi beats - YouTube", classify.Entertainment, "Watched or listened to Lo-fi beats - YouTube for 5m"},
		{"entertainment without title", "Spotify", "", classify.Entertainment, "Unwound with Spotify for 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Activity(tt.app, tt.title, "", tt.cat, 5*time.Minute)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivityGenericFallback(t *testing.T) {
	got := Activity("MysteryApp", "", "", classify.Other, 5*time.Minute)
	assert.Equal(t, "Spent 5m working in MysteryApp", got)

	// No title and no code marker still yields a sentence.
	got = Activity("Xcode", "", "plain prose", classify.Development, 5*time.Minute)
	assert.Equal(t, "Spent 5m developing in Xcode", got)
}

func TestActivityTrimsTitleWhitespace(t *testing.T) {
	got := Activity("Notion", "   ", "", classify.Productivity, 5*time.Minute)
	assert.Equal(t, "Spent 5m organizing work in Notion", got)
}
