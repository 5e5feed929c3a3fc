package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

//go:embed exercises.json
var exercisesJSON []byte

var ErrNotFound = errors.New("catalog: exercise not found")

type Mode string

const (
	ModeTimer    Mode = "timer"
	ModeInterval Mode = "interval"
	ModeReps     Mode = "reps"
	ModeInfo     Mode = "info"
)

type Interval struct {
	Label   string `json:"label"`
	Seconds int    `json:"seconds"`
}

type Exercise struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Category       string     `json:"category"`
	Level          string     `json:"level"`
	Duration       int        `json:"duration,omitempty"`
	DurationLabel  string     `json:"durationLabel,omitempty"`
	Description    string     `json:"description"`
	Steps          []string   `json:"steps"`
	Benefits       []string   `json:"benefits"`
	Mode           Mode       `json:"mode"`
	TimerSeconds   int        `json:"timerSeconds,omitempty"`
	OptionsSeconds []int      `json:"optionsSeconds,omitempty"`
	Intervals      []Interval `json:"intervals,omitempty"`
	Cycles         int        `json:"cycles,omitempty"`
	Reps           int        `json:"reps,omitempty"`
}

// Length is the short duration badge, e.g. "5 min" or "20s".
func (e Exercise) Length() string {
	if e.DurationLabel != "" {
		return e.DurationLabel
	}
	if e.Duration > 0 {
		return fmt.Sprintf("%d min", e.Duration)
	}
	return ""
}

// Query filters the catalog. Empty fields and "All" match everything.
type Query struct {
	Text     string
	Category string
	Level    string
}

type Catalog struct {
	items []Exercise
}

func Load() (*Catalog, error) {
	return Parse(exercisesJSON)
}

func Parse(raw []byte) (*Catalog, error) {
	var items []Exercise
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, errors.New("catalog: exercise without id")
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return &Catalog{items: items}, nil
}

// MustLoad is for the embedded catalog, which is fixed at build time.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) All() []Exercise {
	return slices.Clone(c.items)
}

func (c *Catalog) ByID(id string) (Exercise, error) {
	for _, item := range c.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Exercise{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (c *Catalog) Find(q Query) []Exercise {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]Exercise, 0, len(c.items))
	for _, item := range c.items {
		if !matchField(q.Category, item.Category) || !matchField(q.Level, item.Level) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(item.Title), text) &&
			!strings.Contains(strings.ToLower(item.Description), text) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (c *Catalog) Categories() []string {
	return c.distinct(func(e Exercise) string { return e.Category })
}

func (c *Catalog) Levels() []string {
	return c.distinct(func(e Exercise) string { return e.Level })
}

func (c *Catalog) distinct(field func(Exercise) string) []string {
	out := make([]string, 0)
	for _, item := range c.items {
		if v := field(item); !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func matchField(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(want, got)
}
