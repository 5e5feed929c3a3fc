package update

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/checkins"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/results"
)

type fakeCheckins struct {
	mu    sync.Mutex
	moods map[string]int
	err   error
}

func (f *fakeCheckins) Add(_ context.Context, mood int, _ string) (checkins.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return checkins.Entry{}, f.err
	}
	day := testNow.Format(checkins.DayLayout)
	f.moods[day] = mood
	return checkins.Entry{Day: day, Mood: mood}, nil
}

func (f *fakeCheckins) Summary(_ context.Context, now time.Time) (checkins.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out checkins.Summary
	for i := checkins.WindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(checkins.DayLayout)
		out.Last7 = append(out.Last7, checkins.DayMood{Day: day, Mood: f.moods[day]})
	}
	today := now.Format(checkins.DayLayout)
	if mood, ok := f.moods[today]; ok {
		out.Today = checkins.Entry{Day: today, Mood: mood}
		out.CheckedToday = true
		out.Streak = 1
	}
	return out, nil
}

type recordedResults struct {
	mu  sync.Mutex
	ins []results.Input
}

func (r *recordedResults) Add(_ context.Context, in results.Input) (model.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ins = append(r.ins, in)
	meta, _ := results.LookupTest(in.TestID)
	return model.TestResult{TestID: in.TestID, Label: meta.Label, Eye: in.Eye, Value: in.Value, Unit: in.Unit}, nil
}

// fixedRotations replays rots in order, then keeps returning the last one.
func fixedRotations(rots ...results.Rotation) func() results.Rotation {
	i := 0
	return func() results.Rotation {
		r := rots[min(i, len(rots)-1)]
		i++
		return r
	}
}

func newWellnessModel(t *testing.T, rotate func() results.Rotation) (Model, *fakeCheckins, *recordedResults) {
	t.Helper()
	ci := &fakeCheckins{moods: map[string]int{}}
	rec := &recordedResults{}
	m := NewModel(Options{
		Permissions: fixedPermission(notify.PermissionGranted),
		Checkins:    ci,
		Results:     rec,
		Rotate:      rotate,
		Now:         func() time.Time { return testNow },
	})
	return m, ci, rec
}

func applyAll(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestDashboardCheckinSavesAndReloads(t *testing.T) {
	m, ci, _ := newWellnessModel(t, nil)

	updated, cmd := m.Update(keyMsg("3"))
	m = updated.(Model)
	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected dashboard view, got %q", m.CurrentView)
	}
	for _, msg := range runCmd(cmd) {
		m = applyAll(t, m, msg)
	}
	if !m.Dashboard.Loaded || m.Dashboard.Summary.CheckedToday {
		t.Fatalf("expected an empty loaded dashboard, got %+v", m.Dashboard)
	}

	m = press(t, m, "l", "l")
	updated, cmd = m.Update(keyMsg("enter"))
	m = updated.(Model)
	if !m.Dashboard.Saving {
		t.Fatal("expected save in flight")
	}
	for _, msg := range runCmd(cmd) {
		updated, next := m.Update(msg)
		m = updated.(Model)
		m = applyAll(t, m, runCmd(next)...)
	}

	if ci.moods["2025-01-06"] != 5 {
		t.Fatalf("expected mood 5 stored, got %v", ci.moods)
	}
	if m.Dashboard.Saving || !m.Dashboard.Summary.CheckedToday || m.Dashboard.Summary.Streak != 1 {
		t.Fatalf("expected reloaded summary after save, got %+v", m.Dashboard)
	}
	if !strings.Contains(m.Status.Text, "Great") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if out := m.View(); !strings.Contains(out, "1d") || !strings.Contains(out, "check-in is saved (Great)") {
		t.Fatalf("expected streak and saved check-in in view:\n%s", out)
	}
}

func TestDashboardCheckinErrorIsReported(t *testing.T) {
	m, ci, _ := newWellnessModel(t, nil)
	ci.err = errors.New("locked")
	m.CurrentView = ViewDashboard

	updated, cmd := m.Update(keyMsg("enter"))
	m = updated.(Model)
	for _, msg := range runCmd(cmd) {
		m = applyAll(t, m, msg)
	}
	if m.Dashboard.Saving || !m.Status.IsError || !strings.Contains(m.Status.Text, "locked") {
		t.Fatalf("expected save error in status, got %+v", m.Status)
	}
}

func TestDashboardCursorClamps(t *testing.T) {
	m, _, _ := newWellnessModel(t, nil)
	m.CurrentView = ViewDashboard
	m = press(t, m, "h", "h", "h", "h")
	if m.Dashboard.MoodCursor != 0 {
		t.Fatalf("expected cursor at first mood, got %d", m.Dashboard.MoodCursor)
	}
	m = press(t, m, "l", "l", "l", "l", "l", "l")
	if m.Dashboard.MoodCursor != len(checkins.Moods)-1 {
		t.Fatalf("expected cursor at last mood, got %d", m.Dashboard.MoodCursor)
	}
}

func TestAcuityArrowsDriveStaircase(t *testing.T) {
	m, _, _ := newWellnessModel(t, fixedRotations(results.RotUp, results.RotLeft, results.RotDown))
	m = press(t, m, "4")
	if m.CurrentView != ViewAcuity || m.Acuity.Rotation != results.RotUp {
		t.Fatalf("unexpected acuity start: view %q rotation %s", m.CurrentView, m.Acuity.Rotation)
	}

	m = press(t, m, "up", "left")
	if got := m.Acuity.Stair.Snellen(); got != "20/25" {
		t.Fatalf("expected two correct answers to step to 20/25, got %s", got)
	}
	m = press(t, m, "up")
	if got := m.Acuity.Stair.Snellen(); got != "20/32" {
		t.Fatalf("expected a miss to step back to 20/32, got %s", got)
	}
	if m.Acuity.Stair.Last() != "25:✗" {
		t.Fatalf("unexpected last answer %q", m.Acuity.Stair.Last())
	}
}

func TestAcuitySaveRecordsResult(t *testing.T) {
	m, _, rec := newWellnessModel(t, fixedRotations(results.RotRight))
	m.CurrentView = ViewAcuity

	m = press(t, m, "s")
	if !m.Status.IsError || len(rec.ins) != 0 {
		t.Fatalf("expected save before any answer to be refused, got %+v", m.Status)
	}

	m = press(t, m, "n", "e", "right", "l")
	updated, cmd := m.Update(keyMsg("s"))
	m = updated.(Model)
	if !m.Acuity.Saving {
		t.Fatal("expected save in flight")
	}
	for _, msg := range runCmd(cmd) {
		m = applyAll(t, m, msg)
	}

	if len(rec.ins) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(rec.ins))
	}
	in := rec.ins[0]
	if in.TestID != "acuity-distance" || in.Eye != model.EyeRight || in.Value != "20/25" || in.Unit != "logMAR 0.10" {
		t.Fatalf("unexpected recorded input %+v", in)
	}
	if in.DistanceCM == nil || *in.DistanceCM != 300 {
		t.Fatalf("expected distance 300 cm, got %v", in.DistanceCM)
	}
	if in.Notes != "32:✓ • 32:✓" {
		t.Fatalf("unexpected notes %q", in.Notes)
	}
	if m.Acuity.Saving || m.Acuity.Stair.Trials() != 0 || !strings.Contains(m.Status.Text, "Distance Visual Acuity") {
		t.Fatalf("expected a fresh run after saving, got %+v / %q", m.Acuity, m.Status.Text)
	}
}

func TestTabCyclesAllViews(t *testing.T) {
	m, _, _ := newWellnessModel(t, nil)
	want := []View{ViewExercises, ViewDashboard, ViewAcuity, ViewSleep}
	for _, v := range want {
		m = press(t, m, "tab")
		if m.CurrentView != v {
			t.Fatalf("expected %q, got %q", v, m.CurrentView)
		}
	}
}

func TestWellnessViewsWithoutServices(t *testing.T) {
	m := NewModel(Options{Now: func() time.Time { return testNow }})
	if m.Init() != nil {
		t.Fatal("expected no initial load without a check-in service")
	}
	m.CurrentView = ViewDashboard
	m = press(t, m, "enter")
	if !m.Status.IsError {
		t.Fatal("expected check-in without a service to fail")
	}
	m.CurrentView = ViewAcuity
	m = press(t, m, "up", "s")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "results service unavailable") {
		t.Fatalf("unexpected status %+v", m.Status)
	}
}
