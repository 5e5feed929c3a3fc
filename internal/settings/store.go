package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/storage"
)

// ReminderKey is the settings-table key holding the sleep reminder JSON.
const ReminderKey = "visionary:sleep-reminder"

// KV is the slice of the storage repository the settings layer needs.
type KV interface {
	GetSetting(ctx context.Context, key string) (storage.Setting, error)
	PutSetting(ctx context.Context, in storage.Setting) error
}

// ValidationError reports a shape or range violation in a reminder rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings: invalid %s: %s", e.Field, e.Reason)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithZoneDetector(detect func() string) Option {
	return func(s *Store) {
		if detect != nil {
			s.detectZone = detect
		}
	}
}

type Store struct {
	kv         KV
	log        *zap.Logger
	now        func() time.Time
	detectZone func() string
}

func NewStore(kv KV, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		kv:         kv,
		log:        log.Named("settings"),
		now:        time.Now,
		detectZone: DetectZone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Zone returns the zone the store stamps onto saved rules.
func (s *Store) Zone() string {
	return s.detectZone()
}

func (s *Store) Defaults() model.SleepReminder {
	return model.DefaultSleepReminder(s.detectZone(), s.now())
}

// Load returns the persisted rule. Missing or corrupt records are replaced by
// defaults, which are written back before returning.
func (s *Store) Load(ctx context.Context) model.SleepReminder {
	item, err := s.kv.GetSetting(ctx, ReminderKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("read reminder failed, resetting", zap.Error(err))
		}
		return s.reset(ctx)
	}

	rule, err := decode([]byte(item.Value))
	if err != nil {
		s.log.Warn("stored reminder is corrupt, resetting", zap.Error(err))
		return s.reset(ctx)
	}
	if rule.EveryDay {
		rule.Days = model.AllDays()
	}
	if rule.LastCheckedAt == nil {
		rule = rule.WithWatermark(s.now())
	}
	return rule
}

func (s *Store) reset(ctx context.Context) model.SleepReminder {
	defaults := s.Defaults()
	if err := s.put(ctx, defaults); err != nil {
		s.log.Warn("persist default reminder failed", zap.Error(err))
	}
	return defaults
}

// Save validates, normalizes and persists rule, returning what was written.
// It does not enforce that an explicit day set is non-empty.
func (s *Store) Save(ctx context.Context, rule model.SleepReminder) (model.SleepReminder, error) {
	if err := Validate(rule); err != nil {
		return model.SleepReminder{}, err
	}
	out := normalize(rule.Clone())
	if zone := s.detectZone(); zone != "" && zone != out.TZ {
		out.TZ = zone
	}
	if err := s.put(ctx, out); err != nil {
		return model.SleepReminder{}, fmt.Errorf("persist reminder: %w", err)
	}
	return out, nil
}

func (s *Store) put(ctx context.Context, rule model.SleepReminder) error {
	raw, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	return s.kv.PutSetting(ctx, storage.Setting{Key: ReminderKey, Value: string(raw), UpdatedAt: s.now()})
}

// Validate checks the range constraints of a rule.
func Validate(rule model.SleepReminder) error {
	if rule.Hour < 0 || rule.Hour > 23 {
		return &ValidationError{Field: "hour", Reason: fmt.Sprintf("%d is outside 0-23", rule.Hour)}
	}
	if rule.Minute < 0 || rule.Minute > 59 {
		return &ValidationError{Field: "minute", Reason: fmt.Sprintf("%d is outside 0-59", rule.Minute)}
	}
	for _, d := range rule.Days {
		if d < time.Sunday || d > time.Saturday {
			return &ValidationError{Field: "days", Reason: fmt.Sprintf("%d is outside 0-6", int(d))}
		}
	}
	if tz := strings.TrimSpace(rule.TZ); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return &ValidationError{Field: "tz", Reason: fmt.Sprintf("unknown zone %q", tz)}
		}
	}
	return nil
}

func normalize(rule model.SleepReminder) model.SleepReminder {
	if rule.EveryDay {
		rule.Days = model.AllDays()
		return rule
	}
	days := slices.Clone(rule.Days)
	slices.Sort(days)
	rule.Days = slices.Compact(days)
	if rule.Days == nil {
		rule.Days = []time.Weekday{}
	}
	return rule
}

type rawRule struct {
	Enabled       *bool     `json:"enabled"`
	Hour          *float64  `json:"hour"`
	Minute        *float64  `json:"minute"`
	Days          []float64 `json:"days"`
	EveryDay      *bool     `json:"everyDay"`
	TZ            *string   `json:"tz"`
	LastCheckedAt *float64  `json:"lastCheckedAt"`
}

// decode parses a stored record, requiring every key except lastCheckedAt.
func decode(raw []byte) (model.SleepReminder, error) {
	var in rawRule
	if err := json.Unmarshal(raw, &in); err != nil {
		return model.SleepReminder{}, err
	}
	switch {
	case in.Enabled == nil:
		return model.SleepReminder{}, &ValidationError{Field: "enabled", Reason: "missing"}
	case in.Hour == nil:
		return model.SleepReminder{}, &ValidationError{Field: "hour", Reason: "missing"}
	case in.Minute == nil:
		return model.SleepReminder{}, &ValidationError{Field: "minute", Reason: "missing"}
	case in.Days == nil:
		return model.SleepReminder{}, &ValidationError{Field: "days", Reason: "missing"}
	case in.EveryDay == nil:
		return model.SleepReminder{}, &ValidationError{Field: "everyDay", Reason: "missing"}
	case in.TZ == nil:
		return model.SleepReminder{}, &ValidationError{Field: "tz", Reason: "missing"}
	}

	hour, minute := *in.Hour, *in.Minute
	if hour != float64(int(hour)) {
		return model.SleepReminder{}, &ValidationError{Field: "hour", Reason: "not an integer"}
	}
	if minute != float64(int(minute)) {
		return model.SleepReminder{}, &ValidationError{Field: "minute", Reason: "not an integer"}
	}
	days := make([]time.Weekday, 0, len(in.Days))
	for _, d := range in.Days {
		if d != float64(int(d)) {
			return model.SleepReminder{}, &ValidationError{Field: "days", Reason: "not an integer"}
		}
		days = append(days, time.Weekday(int(d)))
	}

	rule := model.SleepReminder{
		Enabled:  *in.Enabled,
		Hour:     int(hour),
		Minute:   int(minute),
		Days:     days,
		EveryDay: *in.EveryDay,
		TZ:       *in.TZ,
	}
	if in.LastCheckedAt != nil {
		ms := int64(*in.LastCheckedAt)
		rule.LastCheckedAt = &ms
	}
	if err := Validate(rule); err != nil {
		return model.SleepReminder{}, err
	}
	return rule, nil
}
