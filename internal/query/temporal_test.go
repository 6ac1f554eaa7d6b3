package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/membot/internal/core"
)

// Wednesday, 2024-03-13.
var refWednesday = time.Date(2024, 3, 13, 15, 42, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(y int, m time.Month, d int) time.Time {
	return day(y, m, d).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func TestDetectLastThingAndLastTime(t *testing.T) {
	for _, q := range []string{
		"what was the last thing we discussed",
		"show me the LAST MESSAGE",
		"Last Thing?",
	} {
		got := DetectTemporalIntent(q, refWednesday)
		assert.Equal(t, core.TemporalLastThing, got.Mode, "query %q", q)
	}

	got := DetectTemporalIntent("when was the last time we spoke", refWednesday)
	assert.Equal(t, core.TemporalLastTime, got.Mode)
}

func TestDetectYesterdayAndToday(t *testing.T) {
	got := DetectTemporalIntent("what did I say yesterday", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 12), got.From)
	assert.Equal(t, endOfDay(2024, 3, 12), got.To)

	got = DetectTemporalIntent("anything from today", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 13), got.From)
	assert.Equal(t, endOfDay(2024, 3, 13), got.To)
}

// "yestrday" has no substitution-table entry but is within edit
// distance 2 of "yesterday", so the fuzzy correction kicks in for
// short queries.
func TestDetectFuzzyCorrectedYesterday(t *testing.T) {
	got := DetectTemporalIntent("yestrday", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 12), got.From)
	assert.Equal(t, endOfDay(2024, 3, 12), got.To)
}

// Rolling and calendar week phrasings must produce different bounds for
// the same reference date.
func TestDetectWeekRollingVsCalendar(t *testing.T) {
	rolling := DetectTemporalIntent("what happened in the last week", refWednesday)
	require.Equal(t, core.TemporalRange, rolling.Mode)
	assert.Equal(t, day(2024, 3, 6), rolling.From)
	assert.Equal(t, day(2024, 3, 13).Add(-time.Nanosecond), rolling.To)

	calendar := DetectTemporalIntent("what did we talk about last week", refWednesday)
	require.Equal(t, core.TemporalRange, calendar.Mode)
	assert.Equal(t, day(2024, 3, 4), calendar.From)
	assert.Equal(t, endOfDay(2024, 3, 10), calendar.To)

	assert.NotEqual(t, rolling.From, calendar.From)
	assert.NotEqual(t, rolling.To, calendar.To)
}

func TestDetectMonthRollingVsCalendar(t *testing.T) {
	rolling := DetectTemporalIntent("show me this past month", refWednesday)
	require.Equal(t, core.TemporalRange, rolling.Mode)
	assert.Equal(t, day(2024, 2, 13), rolling.From)
	assert.Equal(t, day(2024, 3, 13).Add(-time.Nanosecond), rolling.To)

	calendar := DetectTemporalIntent("what about the previous month", refWednesday)
	require.Equal(t, core.TemporalRange, calendar.Mode)
	assert.Equal(t, day(2024, 2, 1), calendar.From)
	assert.Equal(t, day(2024, 3, 1).Add(-time.Nanosecond), calendar.To)
}

func TestDetectYearRollingVsCalendar(t *testing.T) {
	rolling := DetectTemporalIntent("everything in the past year", refWednesday)
	require.Equal(t, core.TemporalRange, rolling.Mode)
	assert.Equal(t, day(2023, 3, 13), rolling.From)
	assert.Equal(t, day(2024, 3, 13).Add(-time.Nanosecond), rolling.To)

	calendar := DetectTemporalIntent("remind me what we did last year", refWednesday)
	require.Equal(t, core.TemporalRange, calendar.Mode)
	assert.Equal(t, day(2023, 1, 1), calendar.From)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), calendar.To)
}

func TestDetectNDays(t *testing.T) {
	got := DetectTemporalIntent("what did I ask 3 days ago", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 10), got.From)
	assert.Equal(t, endOfDay(2024, 3, 10), got.To)

	got = DetectTemporalIntent("summarize the last 3 days", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 10), got.From)
	assert.Equal(t, day(2024, 3, 13).Add(-time.Nanosecond), got.To)
}

// The normalizer runs first, so "2d ago" resolves like "2 days ago".
func TestDetectNormalizedShorthand(t *testing.T) {
	got := DetectTemporalIntent("2d ago", refWednesday)
	require.Equal(t, core.TemporalRange, got.Mode)
	assert.Equal(t, day(2024, 3, 11), got.From)
}

func TestDetectNone(t *testing.T) {
	for _, q := range []string{
		"",
		"   ",
		"tell me a joke",
		"how tall is the eiffel tower",
	} {
		got := DetectTemporalIntent(q, refWednesday)
		assert.Equal(t, core.TemporalNone, got.Mode, "query %q", q)
	}
}

func TestDetectZeroReferenceUsesNow(t *testing.T) {
	got := DetectTemporalIntent("yesterday", time.Time{})
	require.Equal(t, core.TemporalRange, got.Mode)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	assert.Equal(t, today.AddDate(0, 0, -1), got.From)
}
