package update

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/catalog"
)

func TestTimerSessionCountsDown(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "t", Title: "Timer", Mode: catalog.ModeTimer, TimerSeconds: 3})
	if s.Remaining != 3 || s.Label() != "0:03" {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if !s.Toggle() {
		t.Fatal("expected toggle to start ticking")
	}
	s.Tick()
	s.Tick()
	if s.Done || s.Remaining != 1 {
		t.Fatalf("expected one second left, got %+v", s)
	}
	if got := s.Progress(); got < 0.66 || got > 0.67 {
		t.Fatalf("unexpected progress %.3f", got)
	}
	s.Tick()
	if !s.Done || s.Running || s.Remaining != 0 {
		t.Fatalf("expected finished session, got %+v", s)
	}
	if s.Progress() != 1 {
		t.Fatalf("expected full progress, got %f", s.Progress())
	}

	// starting a finished timer restarts it
	if !s.Toggle() || s.Remaining != 3 || s.Done {
		t.Fatalf("expected restart, got %+v", s)
	}
}

func TestTimerSessionPauseStopsTicks(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "t", Mode: catalog.ModeTimer, TimerSeconds: 10})
	s.Toggle()
	s.Tick()
	if s.Toggle() {
		t.Fatal("expected pause to not start a tick loop")
	}
	s.Tick()
	if s.Remaining != 9 {
		t.Fatalf("expected paused timer to hold at 9, got %d", s.Remaining)
	}
}

func TestTimerSessionDefaultsAndOptions(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "p", Mode: catalog.ModeTimer, TimerSeconds: 300, OptionsSeconds: []int{300, 600}})
	if !s.CycleOption() || s.Initial != 600 || s.Remaining != 600 {
		t.Fatalf("expected second option, got %+v", s)
	}
	if !s.CycleOption() || s.Initial != 300 {
		t.Fatalf("expected options to wrap, got %+v", s)
	}

	plain := NewSession(catalog.Exercise{ID: "d", Mode: catalog.ModeTimer})
	if plain.Initial != defaultTimerSeconds {
		t.Fatalf("expected default timer, got %d", plain.Initial)
	}
	if plain.CycleOption() {
		t.Fatal("expected no options to cycle")
	}
}

func TestIntervalSessionWalksSequenceAndCycles(t *testing.T) {
	s := NewSession(catalog.Exercise{
		ID:   "blink",
		Mode: catalog.ModeInterval,
		Intervals: []catalog.Interval{
			{Label: "Blink", Seconds: 2},
			{Label: "Rest", Seconds: 1},
		},
		Cycles: 2,
	})
	if s.TotalSeconds() != 6 {
		t.Fatalf("expected 6 total seconds, got %d", s.TotalSeconds())
	}
	s.Toggle()

	type step struct {
		index, cycle, remaining int
	}
	want := []step{
		{0, 1, 1},
		{1, 1, 1},
		{0, 2, 2},
		{0, 2, 1},
		{1, 2, 1},
	}
	for i, w := range want {
		s.Tick()
		if s.Index != w.index || s.Cycle != w.cycle || s.Remaining != w.remaining {
			t.Fatalf("tick %d: got index=%d cycle=%d remaining=%d, want %+v", i+1, s.Index, s.Cycle, s.Remaining, w)
		}
	}
	s.Tick()
	if !s.Done || s.Running {
		t.Fatalf("expected finished session, got %+v", s)
	}
	if s.Progress() != 1 {
		t.Fatalf("expected full progress, got %f", s.Progress())
	}
}

func TestIntervalSessionWithoutIntervals(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "empty", Mode: catalog.ModeInterval})
	if s.Toggle() || s.Running {
		t.Fatal("expected empty interval session to stay idle")
	}
	if s.Label() != "Ready" {
		t.Fatalf("unexpected label %q", s.Label())
	}
}

func TestRepsSession(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "r", Mode: catalog.ModeReps, Reps: 2})
	if s.Toggle() {
		t.Fatal("reps never start a tick loop")
	}
	if s.Reps != 1 || s.Done {
		t.Fatalf("unexpected state: %+v", s)
	}
	s.Toggle()
	s.Toggle()
	if s.Reps != 2 || !s.Done || s.Label() != "2 / 2 reps" {
		t.Fatalf("expected capped reps, got %+v", s)
	}
	s.Reset()
	if s.Reps != 0 || s.Done {
		t.Fatalf("expected reset, got %+v", s)
	}

	if NewSession(catalog.Exercise{ID: "d", Mode: catalog.ModeReps}).RepGoal != defaultRepGoal {
		t.Fatal("expected default rep goal")
	}
}

func TestInfoSessionMarksDone(t *testing.T) {
	s := NewSession(catalog.Exercise{ID: "i", Mode: catalog.ModeInfo})
	s.Toggle()
	if !s.Done || s.Progress() != 1 {
		t.Fatalf("expected done, got %+v", s)
	}
	s.Toggle()
	if s.Done {
		t.Fatal("expected toggle to clear done")
	}
}

func TestModelIgnoresStaleSessionTicks(t *testing.T) {
	m, _ := newTestModel(t)
	m.Session = NewSession(catalog.Exercise{ID: "t", Title: "Timer", Mode: catalog.ModeTimer, TimerSeconds: 5})
	m.CurrentView = ViewExercises

	m = press(t, m, "space")
	first := m.Session.gen
	m = press(t, m, "space", "space")
	if m.Session.gen == first {
		t.Fatal("expected restart to bump the tick generation")
	}

	updated, _ := m.Update(SessionTickMsg{Gen: first})
	m = updated.(Model)
	if m.Session.Remaining != 5 {
		t.Fatalf("expected stale tick ignored, got %d", m.Session.Remaining)
	}

	updated, cmd := m.Update(SessionTickMsg{Gen: m.Session.gen})
	m = updated.(Model)
	if m.Session.Remaining != 4 || cmd == nil {
		t.Fatalf("expected live tick to advance and reschedule, got %d", m.Session.Remaining)
	}
}

func TestExercisesViewOpensSessionAndFiltersCategory(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "2", "enter")
	if !m.Session.Active() {
		t.Fatal("expected session to open for the selected exercise")
	}
	first, _ := m.selectedExercise()
	if m.Session.ExerciseID != first.ID {
		t.Fatalf("expected session for %q, got %q", first.ID, m.Session.ExerciseID)
	}
	m = press(t, m, "esc")
	if m.Session.Active() {
		t.Fatal("expected esc to close the session")
	}

	m = press(t, m, "c")
	if m.Exercises.Category == "All" {
		t.Fatal("expected category to change")
	}
	for _, e := range m.Exercises.Items {
		if e.Category != m.Exercises.Category {
			t.Fatalf("exercise %q outside category %q", e.ID, m.Exercises.Category)
		}
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(Model)
	if len(m.Exercises.Items) > 1 && m.exerciseList.Index() != 1 {
		t.Fatalf("expected cursor to move, got %d", m.exerciseList.Index())
	}
}
