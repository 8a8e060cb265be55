package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalDurationForDay(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	day := DayKey(testTime(0, 0))

	total, err := store.TotalDurationForDay(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: testTime(9, 0), AppName: "Xcode", Title: "a", Category: "Development", DurationSecs: 600}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: testTime(10, 0), AppName: "Safari", Title: "b", Category: "Browsing", DurationSecs: 300}))

	total, err = store.TotalDurationForDay(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(900), total)
}

func TestTotalDurationBetween(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	d1 := testTime(9, 0)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: d1, AppName: "Xcode", Title: "a", Category: "Development", DurationSecs: 600}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: d2, AppName: "Safari", Title: "b", Category: "Browsing", DurationSecs: 300}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: d3, AppName: "Notes", Title: "c", Category: "Productivity", DurationSecs: 100}))

	total, err := store.TotalDurationBetween(ctx, DayKey(d1), DayKey(d2))
	require.NoError(t, err)
	assert.Equal(t, int64(900), total)

	total, err = store.TotalDurationBetween(ctx, DayKey(d3), DayKey(d3))
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}

func TestCategoryBreakdown(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	day := DayKey(testTime(0, 0))

	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: testTime(9, 0), AppName: "Xcode", Title: "a", Category: "Development", DurationSecs: 600}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: testTime(10, 0), AppName: "Terminal", Title: "b", Category: "Development", DurationSecs: 200}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: testTime(11, 0), AppName: "Safari", Title: "c", Category: "Browsing", DurationSecs: 300}))

	breakdown, err := store.CategoryBreakdown(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, CategoryDuration{Category: "Development", Seconds: 800}, breakdown[0])
	assert.Equal(t, CategoryDuration{Category: "Browsing", Seconds: 300}, breakdown[1])
}

func TestDailyTotals(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	d1 := testTime(9, 0)
	d2 := d1.AddDate(0, 0, 1)

	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: d2, AppName: "Notes", Title: "b", Category: "Productivity", DurationSecs: 100}))
	require.NoError(t, store.InsertEntry(ctx, &ActivityEntry{Timestamp: d1, AppName: "Notes", Title: "a", Category: "Productivity", DurationSecs: 200}))

	totals, err := store.DailyTotals(ctx, DayKey(d1), DayKey(d2))
	require.NoError(t, err)
	require.Len(t, totals, 2)
	// Oldest first.
	assert.Equal(t, DayTotal{Day: DayKey(d1), Seconds: 200}, totals[0])
	assert.Equal(t, DayTotal{Day: DayKey(d2), Seconds: 100}, totals[1])
}

func TestTopApps(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	day := "2026-08-15"

	require.NoError(t, store.AccumulateAppUsage(ctx, day, "Xcode", "hammer", "Development", 900))
	require.NoError(t, store.AccumulateAppUsage(ctx, day, "Safari", "globe", "Browsing", 600))
	require.NoError(t, store.AccumulateAppUsage(ctx, day, "Slack", "bubble.left", "Communication", 300))

	top, err := store.TopApps(ctx, day, day, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Xcode", top[0].AppName)
	assert.Equal(t, "Safari", top[1].AppName)
}
