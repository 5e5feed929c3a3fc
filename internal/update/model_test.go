package update

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/scheduler"
)

var testNow = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

type fakeReminders struct {
	mu      sync.Mutex
	snap    scheduler.Snapshot
	saveFn  func(model.SleepReminder) scheduler.SaveResult
	saved   []model.SleepReminder
	visible []bool
}

func (f *fakeReminders) Snapshot() scheduler.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeReminders) Save(_ context.Context, draft model.SleepReminder) scheduler.SaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, draft)
	if f.saveFn != nil {
		return f.saveFn(draft)
	}
	f.snap.Active = draft.Clone()
	return scheduler.SaveResult{OK: true, Draft: draft.Clone()}
}

func (f *fakeReminders) SetVisible(_ context.Context, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = append(f.visible, visible)
}

type fixedPermission notify.Permission

func (p fixedPermission) State(context.Context) notify.Permission { return notify.Permission(p) }

func activeRule() model.SleepReminder {
	return model.SleepReminder{
		Enabled:  true,
		Hour:     22,
		Minute:   0,
		Days:     model.AllDays(),
		EveryDay: true,
		TZ:       "UTC",
	}.WithWatermark(testNow)
}

func newTestModel(t *testing.T) (Model, *fakeReminders) {
	t.Helper()
	rule := activeRule()
	next, ok := model.NextOccurrence(rule, testNow)
	fake := &fakeReminders{snap: scheduler.Snapshot{
		State:     scheduler.StateArmed,
		Active:    rule,
		Next:      next,
		HasNext:   ok,
		Watermark: testNow,
	}}
	m := NewModel(Options{
		Reminders:   fake,
		Permissions: fixedPermission(notify.PermissionGranted),
		Now:         func() time.Time { return testNow },
	})
	return m, fake
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(keyMsg(k))
		m = updated.(Model)
	}
	return m
}

// runCmd executes cmd and any batched commands, returning the produced messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewSleep {
		t.Fatalf("expected default view %q, got %q", ViewSleep, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Dirty() {
		t.Fatal("expected draft to start equal to the active rule")
	}
	if m.Permission != notify.PermissionGranted {
		t.Fatalf("expected granted permission, got %q", m.Permission)
	}
}

func TestNewModelWithoutService(t *testing.T) {
	m := NewModel(Options{Now: func() time.Time { return testNow }})
	if m.Draft.Enabled || m.Draft.Hour != model.DefaultHour {
		t.Fatalf("expected default rule draft, got %+v", m.Draft)
	}
	m = press(t, m, "s")
	if !m.Status.IsError || m.Saving {
		t.Fatalf("expected save without a service to fail, got %+v", m.Status)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "2")
	if m.CurrentView != ViewExercises {
		t.Fatalf("expected exercises view, got %q", m.CurrentView)
	}
	m = press(t, m, "1")
	if m.CurrentView != ViewSleep {
		t.Fatalf("expected sleep view, got %q", m.CurrentView)
	}
	m = press(t, m, "tab")
	if m.CurrentView != ViewExercises {
		t.Fatalf("expected tab to cycle to exercises, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewExercises})
	next := updated.(Model)
	if next.CurrentView != ViewExercises {
		t.Fatalf("expected exercises view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewExercises {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestSleepEditingMarksDraftDirty(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "e")
	if m.Draft.Enabled || !m.Dirty() {
		t.Fatalf("expected disabled dirty draft, got %+v", m.Draft)
	}
	if !m.Active.Active.Enabled {
		t.Fatal("editing the draft must not touch the active rule")
	}
	m = press(t, m, "r")
	if m.Dirty() || !m.Draft.Enabled {
		t.Fatalf("expected reset to restore the active rule, got %+v", m.Draft)
	}
}

func TestSleepTimeAdjustment(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "k", "k", "J")
	if m.Draft.Hour != 21 || m.Draft.Minute != 30 {
		t.Fatalf("expected 21:30, got %02d:%02d", m.Draft.Hour, m.Draft.Minute)
	}
}

func TestToggleDayLeavesEveryDay(t *testing.T) {
	m, _ := newTestModel(t)
	// cursor starts on Monday
	m = press(t, m, "space")
	if m.Draft.EveryDay {
		t.Fatal("expected every day to switch off")
	}
	if len(m.Draft.Days) != 6 {
		t.Fatalf("expected six remaining days, got %v", m.Draft.Days)
	}
	for _, d := range m.Draft.Days {
		if d == time.Monday {
			t.Fatalf("expected Monday removed, got %v", m.Draft.Days)
		}
	}

	m = press(t, m, "l", "space")
	for _, d := range m.Draft.Days {
		if d == time.Tuesday {
			t.Fatalf("expected Tuesday removed, got %v", m.Draft.Days)
		}
	}

	m = press(t, m, "a")
	if !m.Draft.EveryDay || len(m.Draft.Days) != 7 {
		t.Fatalf("expected every day restored, got %+v", m.Draft)
	}
}

func TestDayCursorWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "h")
	if m.DayCursor != 6 {
		t.Fatalf("expected cursor to wrap to Sunday, got %d", m.DayCursor)
	}
	m = press(t, m, "l")
	if m.DayCursor != 0 {
		t.Fatalf("expected cursor back on Monday, got %d", m.DayCursor)
	}
}

func TestSaveSuccessAdoptsActiveRule(t *testing.T) {
	m, fake := newTestModel(t)
	m = press(t, m, "k")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(Model)
	if !m.Saving {
		t.Fatal("expected saving flag while the save runs")
	}

	var result *SaveResultMsg
	for _, msg := range runCmd(cmd) {
		if r, ok := msg.(SaveResultMsg); ok {
			result = &r
		}
	}
	if result == nil {
		t.Fatal("expected a save result message")
	}
	updated, _ = m.Update(*result)
	m = updated.(Model)

	if m.Saving || m.Status.IsError {
		t.Fatalf("unexpected state after save: saving=%v status=%+v", m.Saving, m.Status)
	}
	if m.Status.Text != "Bedtime reminder saved." {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	if len(fake.saved) != 1 || fake.saved[0].Minute != 15 {
		t.Fatalf("expected the draft to be saved once, got %+v", fake.saved)
	}
	if m.Dirty() || m.Active.Active.Minute != 15 {
		t.Fatalf("expected active rule to match saved draft, got %+v", m.Active.Active)
	}
}

func TestSaveIgnoredWhileSaving(t *testing.T) {
	m, _ := newTestModel(t)
	m.Saving = true
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if cmd != nil || !updated.(Model).Saving {
		t.Fatal("expected second save to be ignored")
	}
}

func TestSavePermissionDenied(t *testing.T) {
	m, fake := newTestModel(t)
	fake.saveFn = func(draft model.SleepReminder) scheduler.SaveResult {
		draft.Enabled = false
		return scheduler.SaveResult{Code: scheduler.SavePermissionDenied, Draft: draft}
	}
	m = press(t, m, "k")
	updated, _ := m.Update(SaveResultMsg{Result: fake.Save(context.Background(), m.Draft)})
	m = updated.(Model)

	if m.Permission != notify.PermissionDenied {
		t.Fatalf("expected denied permission, got %q", m.Permission)
	}
	if m.Draft.Enabled {
		t.Fatal("expected draft to be switched off")
	}
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "blocked") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if !strings.Contains(m.View(), BlockedMessage) {
		t.Fatal("expected blocked banner in view")
	}
}

func TestSaveNoDaysKeepsDraft(t *testing.T) {
	m, fake := newTestModel(t)
	fake.saveFn = func(draft model.SleepReminder) scheduler.SaveResult {
		return scheduler.SaveResult{Code: scheduler.SaveNoDays, Draft: draft}
	}
	m.Draft.EveryDay = false
	m.Draft.Days = []time.Weekday{}
	updated, _ := m.Update(SaveResultMsg{Result: fake.Save(context.Background(), m.Draft)})
	m = updated.(Model)
	if !m.Dirty() || m.Draft.EveryDay {
		t.Fatalf("expected the rejected draft to remain, got %+v", m.Draft)
	}
	if !strings.Contains(m.Status.Text, "at least one day") {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
}

func TestSnapshotMsgFollowsCleanDraft(t *testing.T) {
	m, _ := newTestModel(t)
	changed := activeRule()
	changed.Hour = 21
	updated, _ := m.Update(SnapshotMsg{Snapshot: scheduler.Snapshot{State: scheduler.StateArmed, Active: changed}})
	m = updated.(Model)
	if m.Draft.Hour != 21 {
		t.Fatalf("expected clean draft to follow the new rule, got %+v", m.Draft)
	}

	m = press(t, m, "k")
	changed.Hour = 20
	updated, _ = m.Update(SnapshotMsg{Snapshot: scheduler.Snapshot{State: scheduler.StateArmed, Active: changed}})
	m = updated.(Model)
	if m.Draft.Hour != 21 || m.Draft.Minute != 15 {
		t.Fatalf("expected edited draft to be kept, got %+v", m.Draft)
	}
	if m.Active.Active.Hour != 20 {
		t.Fatalf("expected active rule to update, got %+v", m.Active.Active)
	}
}

func TestMissedBannerDismiss(t *testing.T) {
	m, _ := newTestModel(t)
	snap := m.Active
	snap.LastMissed = time.Date(2025, 1, 5, 22, 0, 0, 0, time.UTC)
	updated, _ := m.Update(SnapshotMsg{Snapshot: snap})
	m = updated.(Model)
	if !strings.Contains(m.View(), "You missed a bedtime reminder at 10:00 PM") {
		t.Fatal("expected missed banner")
	}
	m = press(t, m, "x")
	if strings.Contains(m.View(), "You missed a bedtime reminder") {
		t.Fatal("expected banner to be dismissed")
	}
}

func TestFocusReportsVisibility(t *testing.T) {
	m, fake := newTestModel(t)
	_, cmd := m.Update(tea.BlurMsg{})
	runCmd(cmd)
	_, cmd = m.Update(tea.FocusMsg{})
	runCmd(cmd)
	if len(fake.visible) != 2 || fake.visible[0] || !fake.visible[1] {
		t.Fatalf("expected hidden then visible, got %v", fake.visible)
	}
}

func TestReminderMsgAddsNotification(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(ReminderMsg{Title: notify.ReminderTitle, Body: scheduler.DefaultReminderBody})
	m = updated.(Model)
	if len(m.Notifications) != 1 || m.Notifications[0].Body != scheduler.DefaultReminderBody {
		t.Fatalf("unexpected notifications: %+v", m.Notifications)
	}
	for i := 0; i < maxNotifications+5; i++ {
		updated, _ = m.Update(ReminderMsg{Title: "t", Body: "b"})
		m = updated.(Model)
	}
	if len(m.Notifications) != maxNotifications {
		t.Fatalf("expected notifications capped at %d, got %d", maxNotifications, len(m.Notifications))
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, _ := newTestModel(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	for _, want := range []string{"view: Sleep", "Every day · 10:00 PM", "status: all good", "state: armed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "?")
	if !m.HelpVisible || !strings.Contains(m.View(), "toggle enabled") {
		t.Fatal("expected sleep help to be visible")
	}
	m = press(t, m, "?")
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}
