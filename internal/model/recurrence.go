package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// MaxOccurrencesPerWindow bounds OccurrencesBetween. Callers must not expect
// more than this many instants from a single call.
const MaxOccurrencesPerWindow = 30

var ErrInvalidWeekday = errors.New("model: invalid weekday")

var dayAbbr = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MondayFirst is the display order for day chips and previews.
var MondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func DayLabel(d time.Weekday) string {
	return dayAbbr[((int(d)%7)+7)%7]
}

func ParseWeekday(raw string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sun", "sunday", "0":
		return time.Sunday, nil
	case "mon", "monday", "1":
		return time.Monday, nil
	case "tue", "tues", "tuesday", "2":
		return time.Tuesday, nil
	case "wed", "wednesday", "3":
		return time.Wednesday, nil
	case "thu", "thur", "thurs", "thursday", "4":
		return time.Thursday, nil
	case "fri", "friday", "5":
		return time.Friday, nil
	case "sat", "saturday", "6":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
	}
}

// EffectiveDays returns the weekdays the rule fires on: all seven when
// EveryDay is set, otherwise Days deduplicated and sorted ascending.
func EffectiveDays(r SleepReminder) []time.Weekday {
	if r.EveryDay {
		return AllDays()
	}
	out := slices.Clone(r.Days)
	slices.Sort(out)
	return slices.Compact(out)
}

// Location resolves the rule's zone, falling back to UTC for unknown names.
func Location(r SleepReminder) *time.Location {
	if strings.TrimSpace(r.TZ) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.TZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NextOccurrence returns the soonest firing instant after now. The bool is
// false when the rule is disabled or has no effective days.
func NextOccurrence(r SleepReminder, now time.Time) (time.Time, bool) {
	if !r.Enabled {
		return time.Time{}, false
	}
	days := EffectiveDays(r)
	if len(days) == 0 {
		return time.Time{}, false
	}

	local := now.In(Location(r))
	y, m, d := local.Date()
	today := local.Weekday()

	var next time.Time
	found := false
	for _, wd := range days {
		if wd < time.Sunday || wd > time.Saturday {
			continue
		}
		diff := (int(wd) - int(today) + 7) % 7
		candidate := time.Date(y, m, d+diff, r.Hour, r.Minute, 0, 0, local.Location())
		if diff == 0 && !candidate.After(now) {
			candidate = time.Date(y, m, d+7, r.Hour, r.Minute, 0, 0, local.Location())
		}
		if !found || candidate.Before(next) {
			next = candidate
			found = true
		}
	}
	return next, found
}

// OccurrencesBetween lists every occurrence in (from, to], ascending, capped
// at MaxOccurrencesPerWindow.
func OccurrencesBetween(r SleepReminder, from, to time.Time) []time.Time {
	out := make([]time.Time, 0)
	if !r.Enabled || to.Before(from) {
		return out
	}
	cursor := from.Add(-time.Second)
	for i := 0; i < MaxOccurrencesPerWindow; i++ {
		next, ok := NextOccurrence(r, cursor)
		if !ok || next.After(to) {
			break
		}
		if next.After(from) {
			out = append(out, next)
		}
		cursor = next.Add(time.Second)
	}
	return out
}

// FormatTime renders an hour/minute pair the way the previews show it.
func FormatTime(hour, minute int, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, loc).Format("3:04 PM")
}

// FormatInstant renders t as a wall-clock time in the rule's zone.
func FormatInstant(r SleepReminder, t time.Time) string {
	return t.In(Location(r)).Format("3:04 PM")
}

func daysLabel(r SleepReminder) string {
	if r.EveryDay {
		return "Every day"
	}
	selected := EffectiveDays(r)
	if len(selected) == 0 {
		return "(no days selected)"
	}
	labels := make([]string, 0, len(selected))
	for _, d := range MondayFirst {
		if slices.Contains(selected, d) {
			labels = append(labels, DayLabel(d))
		}
	}
	return strings.Join(labels, ", ")
}

// FormatPreview is the one-line status of a rule, e.g. "Mon, Wed, Fri · 10:00 PM".
func FormatPreview(r SleepReminder) string {
	if !r.Enabled {
		return "Off"
	}
	return daysLabel(r) + " · " + FormatTime(r.Hour, r.Minute, Location(r))
}

// Summary is the long form shown next to the editor; it ignores Enabled.
func Summary(r SleepReminder) string {
	at := FormatTime(r.Hour, r.Minute, Location(r))
	if r.EveryDay {
		return "Reminds at " + at + " - Every day"
	}
	label := daysLabel(r)
	if len(EffectiveDays(r)) == 0 {
		return "Reminds at " + at + " - " + label
	}
	return "Reminds at " + at + " on " + label
}
