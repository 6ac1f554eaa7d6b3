package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/membot/internal/core"
)

// FuzzyCorrectionMaxLen bounds the query length for which temporal
// keyword correction is attempted; longer queries are taken literally.
const FuzzyCorrectionMaxLen = 20

var (
	daysAgoRe   = regexp.MustCompile(`\b(\d+)\s+days?\s+ago\b`)
	lastNDaysRe = regexp.MustCompile(`\blast\s+(\d+)\s+days?\b`)

	rollingWeekRe  = regexp.MustCompile(`\b(the\s+last\s+week|this\s+past\s+week|over\s+the\s+last\s+week|in\s+the\s+last\s+week|past\s+week)\b`)
	calendarWeekRe = regexp.MustCompile(`\b(last\s+week|previous\s+week|the\s+prior\s+week)\b`)

	rollingMonthRe  = regexp.MustCompile(`\b(the\s+last\s+month|this\s+past\s+month|over\s+the\s+last\s+month|in\s+the\s+last\s+month|past\s+month)\b`)
	calendarMonthRe = regexp.MustCompile(`\b(last\s+month|previous\s+month|the\s+prior\s+month)\b`)

	rollingYearRe  = regexp.MustCompile(`\b(this\s+last\s+year|the\s+last\s+year|in\s+the\s+last\s+year|over\s+the\s+last\s+year|past\s+year|in\s+the\s+past\s+year)\b`)
	calendarYearRe = regexp.MustCompile(`\b(last\s+year|previous\s+year|the\s+prior\s+year)\b`)
)

// DetectTemporalIntent classifies the temporal meaning of a query.
// Checks fire in a strict priority order; the first hit wins. Unmatched
// input yields TemporalNone, never an error.
//
// ref is truncated to UTC day granularity; a zero ref means now.
func DetectTemporalIntent(q string, ref time.Time) core.TemporalIntent {
	if ref.IsZero() {
		ref = time.Now()
	}
	now := ref.UTC().Truncate(24 * time.Hour)

	if strings.TrimSpace(q) == "" {
		return core.TemporalIntent{Mode: core.TemporalNone}
	}

	q = Normalize(q)

	// Short queries get a typo-corrected second chance.
	if len(q) <= FuzzyCorrectionMaxLen {
		if kw := ClosestTemporalKeyword(q); kw != "" {
			q = kw
		}
	}

	if strings.Contains(q, "last thing") || strings.Contains(q, "last message") {
		return core.TemporalIntent{Mode: core.TemporalLastThing}
	}

	if strings.Contains(q, "last time") {
		return core.TemporalIntent{Mode: core.TemporalLastTime}
	}

	if strings.Contains(q, "yesterday") {
		start := now.AddDate(0, 0, -1)
		return rangeIntent(start, start.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	if strings.Contains(q, "today") {
		return rangeIntent(now, now.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	if rollingWeekRe.MatchString(q) {
		return rangeIntent(now.AddDate(0, 0, -7), now.Add(-time.Nanosecond))
	}

	if calendarWeekRe.MatchString(q) {
		daysSinceMonday := (int(now.Weekday()) - int(time.Monday) + 7) % 7
		thisMonday := now.AddDate(0, 0, -daysSinceMonday)
		lastMonday := thisMonday.AddDate(0, 0, -7)
		lastSunday := thisMonday.Add(-time.Nanosecond)
		return rangeIntent(lastMonday, lastSunday)
	}

	if rollingMonthRe.MatchString(q) {
		return rangeIntent(now.AddDate(0, -1, 0), now.Add(-time.Nanosecond))
	}

	if calendarMonthRe.MatchString(q) {
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start := firstOfThisMonth.AddDate(0, -1, 0)
		return rangeIntent(start, firstOfThisMonth.Add(-time.Nanosecond))
	}

	if rollingYearRe.MatchString(q) {
		return rangeIntent(now.AddDate(-1, 0, 0), now.Add(-time.Nanosecond))
	}

	if calendarYearRe.MatchString(q) {
		start := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(now.Year()-1, time.December, 31, 23, 59, 59, 0, time.UTC)
		return rangeIntent(start, end)
	}

	if m := daysAgoRe.FindStringSubmatch(q); m != nil {
		days, _ := strconv.Atoi(m[1])
		start := now.AddDate(0, 0, -days)
		return rangeIntent(start, start.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	if m := lastNDaysRe.FindStringSubmatch(q); m != nil {
		days, _ := strconv.Atoi(m[1])
		return rangeIntent(now.AddDate(0, 0, -days), now.Add(-time.Nanosecond))
	}

	return core.TemporalIntent{Mode: core.TemporalNone}
}

func rangeIntent(from, to time.Time) core.TemporalIntent {
	return core.TemporalIntent{Mode: core.TemporalRange, From: from, To: to}
}
