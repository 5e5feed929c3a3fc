package checkins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/storage"
)

// DayLayout is the calendar-day key of a check-in.
const DayLayout = "2006-01-02"

// WindowDays is the length of the mood series shown on the dashboard.
const WindowDays = 7

var ErrInvalidMood = errors.New("checkins: mood must be between 1 and 5")

type Mood struct {
	Value int
	Label string
}

var Moods = []Mood{
	{Value: 1, Label: "Strained"},
	{Value: 2, Label: "Tired"},
	{Value: 3, Label: "Okay"},
	{Value: 4, Label: "Good"},
	{Value: 5, Label: "Great"},
}

func MoodLabel(v int) string {
	for _, m := range Moods {
		if m.Value == v {
			return m.Label
		}
	}
	return ""
}

type Repository interface {
	UpsertCheckin(ctx context.Context, in storage.Checkin) error
	ListCheckins(ctx context.Context, sinceDay string) ([]storage.Checkin, error)
}

type Entry struct {
	Day       string
	Mood      int
	Note      string
	UpdatedAt time.Time
}

// DayMood is one point of the mood series; Mood is 0 when the day has no
// check-in.
type DayMood struct {
	Day  string
	Mood int
}

// Summary is everything the dashboard shows, read in one query.
type Summary struct {
	Today        Entry
	CheckedToday bool
	Streak       int
	Last7        []DayMood
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithZone sets the zone whose calendar decides what "today" is.
func WithZone(detect func() string) Option {
	return func(s *Service) {
		if detect != nil {
			s.zone = detect
		}
	}
}

// Service keeps one mood check-in per local calendar day.
type Service struct {
	repo Repository
	now  func() time.Time
	zone func() string
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo: repo,
		now:  time.Now,
		zone: func() string { return "" },
		log:  log.Named("checkins"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add records today's mood. A second check-in on the same day replaces the
// first.
func (s *Service) Add(ctx context.Context, mood int, note string) (Entry, error) {
	if MoodLabel(mood) == "" {
		return Entry{}, fmt.Errorf("%w: got %d", ErrInvalidMood, mood)
	}
	now := s.now()
	day := s.dayOf(now)
	in := storage.Checkin{
		Day:       day,
		Mood:      mood,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertCheckin(ctx, in); err != nil {
		return Entry{}, fmt.Errorf("store checkin: %w", err)
	}
	s.log.Info("checkin recorded", zap.String("day", day), zap.Int("mood", mood))
	return Entry{Day: day, Mood: mood, Note: in.Note, UpdatedAt: now.UTC()}, nil
}

// Streak counts consecutive checked-in days ending today. A day without a
// check-in today means a streak of 0.
func (s *Service) Streak(ctx context.Context, now time.Time) (int, error) {
	byDay, err := s.load(ctx, "")
	if err != nil {
		return 0, err
	}
	return streak(byDay, s.localDay(now)), nil
}

// Last7 returns the mood of each of the last seven days, oldest first and
// ending today.
func (s *Service) Last7(ctx context.Context, now time.Time) ([]DayMood, error) {
	today := s.localDay(now)
	byDay, err := s.load(ctx, today.AddDate(0, 0, -(WindowDays-1)).Format(DayLayout))
	if err != nil {
		return nil, err
	}
	return window(byDay, today), nil
}

func (s *Service) Summary(ctx context.Context, now time.Time) (Summary, error) {
	byDay, err := s.load(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	today := s.localDay(now)
	out := Summary{
		Streak: streak(byDay, today),
		Last7:  window(byDay, today),
	}
	out.Today, out.CheckedToday = byDay[today.Format(DayLayout)]
	return out, nil
}

func (s *Service) load(ctx context.Context, since string) (map[string]Entry, error) {
	rows, err := s.repo.ListCheckins(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	out := make(map[string]Entry, len(rows))
	for _, r := range rows {
		out[r.Day] = Entry{Day: r.Day, Mood: r.Mood, Note: r.Note, UpdatedAt: r.UpdatedAt}
	}
	return out, nil
}

func (s *Service) location() *time.Location {
	if name := s.zone(); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}

func (s *Service) dayOf(t time.Time) string {
	return s.localDay(t).Format(DayLayout)
}

// localDay is noon of t's calendar day, so day arithmetic never lands on a
// DST gap.
func (s *Service) localDay(t time.Time) time.Time {
	loc := s.location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}

func streak(byDay map[string]Entry, today time.Time) int {
	n := 0
	for d := today; ; d = d.AddDate(0, 0, -1) {
		if _, ok := byDay[d.Format(DayLayout)]; !ok {
			return n
		}
		n++
	}
}

func window(byDay map[string]Entry, today time.Time) []DayMood {
	out := make([]DayMood, 0, WindowDays)
	for i := WindowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(DayLayout)
		out = append(out, DayMood{Day: day, Mood: byDay[day].Mood})
	}
	return out
}
