package narrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/retrace/internal/classify"
	"github.com/runnerr0/retrace/internal/storage"
)

// noActivity is the fixed sentence returned for a day with no entries.
const noActivity = "No activity recorded for this day."

// Floors below which a category doesn't earn its own closing sentence.
const (
	developmentFloor   = 30 * time.Minute
	communicationFloor = 15 * time.Minute
)

// Day composes the daily narrative: screen-time headline, activity count,
// top apps, the dominant category with its share, a productivity-tier
// sentence, and closing clauses for categories that crossed their floors.
func Day(entries []storage.ActivityEntry, totalSecs int64, topApps []storage.AppDuration, score float64) string {
	if len(entries) == 0 {
		return noActivity
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("You spent %s on screen across %s",
		FormatSeconds(totalSecs), countPhrase(len(entries))))

	if clause := topAppsClause(topApps); clause != "" {
		b.WriteString(", ")
		b.WriteString(clause)
	}
	b.WriteString(". ")

	catSecs := categorySeconds(entries)
	if top, secs := largestCategory(catSecs); top != "" && totalSecs > 0 {
		pct := float64(secs) / float64(totalSecs) * 100
		b.WriteString(fmt.Sprintf("%s took the biggest share at %.0f%% of your screen time. ", top, pct))
	}

	b.WriteString(productivityTier(score))

	if devSecs := catSecs[classify.Development]; devSecs >= int64(developmentFloor.Seconds()) {
		b.WriteString(fmt.Sprintf(" You put in %s of focused development.", FormatSeconds(devSecs)))
	}
	if commSecs := catSecs[classify.Communication]; commSecs >= int64(communicationFloor.Seconds()) {
		b.WriteString(fmt.Sprintf(" %s went to staying in touch.", FormatSeconds(commSecs)))
	}

	return b.String()
}

func countPhrase(n int) string {
	if n == 1 {
		return "1 activity"
	}
	return fmt.Sprintf("%d activities", n)
}

// topAppsClause phrases the leading apps: one, two, and three-or-more apps
// each read differently.
func topAppsClause(apps []storage.AppDuration) string {
	switch {
	case len(apps) == 0:
		return ""
	case len(apps) == 1:
		return fmt.Sprintf("mostly in %s", apps[0].AppName)
	case len(apps) == 2:
		return fmt.Sprintf("mostly in %s and %s", apps[0].AppName, apps[1].AppName)
	default:
		return fmt.Sprintf("mostly in %s, %s, and %s",
			apps[0].AppName, apps[1].AppName, apps[2].AppName)
	}
}

// productivityTier maps the score to one of four fixed sentences.
func productivityTier(score float64) string {
	switch {
	case score >= 0.75:
		return "It was a highly productive day."
	case score >= 0.5:
		return "It was a fairly productive day."
	case score >= 0.25:
		return "It was a mixed day of work and leisure."
	default:
		return "The day leaned toward leisure."
	}
}

func categorySeconds(entries []storage.ActivityEntry) map[classify.Category]int64 {
	out := make(map[classify.Category]int64)
	for _, e := range entries {
		out[classify.ParseCategory(e.Category)] += e.DurationSecs
	}
	return out
}

// largestCategory picks the category with the most accumulated time,
// breaking ties by the classifier's fixed order.
func largestCategory(catSecs map[classify.Category]int64) (classify.Category, int64) {
	var best classify.Category
	var bestSecs int64
	for _, cat := range classify.All() {
		if secs := catSecs[cat]; secs > bestSecs {
			best, bestSecs = cat, secs
		}
	}
	return best, bestSecs
}
