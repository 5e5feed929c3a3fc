package model

import (
	"slices"
	"time"
)

// SleepReminder is the persisted bedtime reminder rule. Hour and Minute are
// wall-clock values in TZ; LastCheckedAt is the reconcile watermark in epoch
// milliseconds.
type SleepReminder struct {
	Enabled       bool           `json:"enabled"`
	Hour          int            `json:"hour"`
	Minute        int            `json:"minute"`
	Days          []time.Weekday `json:"days"`
	EveryDay      bool           `json:"everyDay"`
	TZ            string         `json:"tz"`
	LastCheckedAt *int64         `json:"lastCheckedAt,omitempty"`
}

const (
	DefaultHour   = 22
	DefaultMinute = 0
)

func AllDays() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func DefaultSleepReminder(tz string, now time.Time) SleepReminder {
	r := SleepReminder{
		Enabled:  false,
		Hour:     DefaultHour,
		Minute:   DefaultMinute,
		Days:     AllDays(),
		EveryDay: true,
		TZ:       tz,
	}
	return r.WithWatermark(now)
}

// Watermark returns LastCheckedAt as a time, or the zero time when unset.
func (r SleepReminder) Watermark() time.Time {
	if r.LastCheckedAt == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.LastCheckedAt)
}

func (r SleepReminder) WithWatermark(t time.Time) SleepReminder {
	ms := t.UnixMilli()
	r.LastCheckedAt = &ms
	return r
}

// Clone copies the rule so the Days slice and watermark are not shared.
func (r SleepReminder) Clone() SleepReminder {
	out := r
	out.Days = slices.Clone(r.Days)
	if r.LastCheckedAt != nil {
		ms := *r.LastCheckedAt
		out.LastCheckedAt = &ms
	}
	return out
}

// SameSchedule reports whether two rules fire at the same instants, ignoring
// the watermark.
func (r SleepReminder) SameSchedule(other SleepReminder) bool {
	return r.Enabled == other.Enabled &&
		r.Hour == other.Hour &&
		r.Minute == other.Minute &&
		r.EveryDay == other.EveryDay &&
		r.TZ == other.TZ &&
		slices.Equal(EffectiveDays(r), EffectiveDays(other))
}

// HasDays is the save-time business rule: an explicit day set must not be empty.
func (r SleepReminder) HasDays() bool {
	return r.EveryDay || len(r.Days) > 0
}

func (r SleepReminder) ToggleDay(d time.Weekday) SleepReminder {
	out := r.Clone()
	if i := slices.Index(out.Days, d); i >= 0 {
		out.Days = slices.DeleteFunc(out.Days, func(x time.Weekday) bool { return x == d })
		return out
	}
	out.Days = append(out.Days, d)
	slices.Sort(out.Days)
	return out
}

// ShiftTime moves the time of day by delta minutes, wrapping around midnight.
func (r SleepReminder) ShiftTime(delta int) SleepReminder {
	out := r.Clone()
	total := ((out.Hour*60+out.Minute+delta)%1440 + 1440) % 1440
	out.Hour = total / 60
	out.Minute = total % 60
	return out
}
