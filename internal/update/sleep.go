package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/notify"
	"github.com/sandeepkv93/visionary/internal/scheduler"
)

func (m Model) handleSleepKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		m.Draft.Enabled = !m.Draft.Enabled
	case "a":
		m.Draft.EveryDay = !m.Draft.EveryDay
		if m.Draft.EveryDay {
			m.Draft.Days = model.AllDays()
		}
	case "h", "left":
		m.DayCursor = (m.DayCursor + len(model.MondayFirst) - 1) % len(model.MondayFirst)
	case "l", "right":
		m.DayCursor = (m.DayCursor + 1) % len(model.MondayFirst)
	case " ", "enter":
		m.toggleCursorDay()
	case "k", "up":
		m.Draft = m.Draft.ShiftTime(15)
	case "j", "down":
		m.Draft = m.Draft.ShiftTime(-15)
	case "K", "shift+up":
		m.Draft = m.Draft.ShiftTime(60)
	case "J", "shift+down":
		m.Draft = m.Draft.ShiftTime(-60)
	case "s":
		return m.startSave()
	case "r":
		m.resetDraft()
	case "x":
		m.dismissedAt = m.Active.LastMissed
	}
	return m, nil
}

// toggleCursorDay flips the day under the cursor. Editing a single day while
// every day is on switches to an explicit set of the other six.
func (m *Model) toggleCursorDay() {
	day := model.MondayFirst[m.DayCursor]
	if m.Draft.EveryDay {
		m.Draft.EveryDay = false
		m.Draft.Days = model.AllDays()
	}
	m.Draft = m.Draft.ToggleDay(day)
}

func (m *Model) resetDraft() {
	m.Draft = m.Active.Active.Clone()
	m.Status = StatusBar{Text: "draft reset"}
}

func (m Model) startSave() (Model, tea.Cmd) {
	if m.Saving {
		return m, nil
	}
	if m.reminders == nil {
		m.Status = StatusBar{Text: "reminder service unavailable", IsError: true}
		return m, nil
	}
	m.Saving = true
	draft := m.Draft.Clone()
	svc := m.reminders
	ctx := m.ctx
	save := func() tea.Msg {
		return SaveResultMsg{Result: svc.Save(ctx, draft)}
	}
	return m, tea.Batch(save, m.saveSpinner.Tick)
}

func (m Model) onSaveResult(res scheduler.SaveResult) Model {
	m.Saving = false
	m.Draft = res.Draft.Clone()
	m.LastError = res.Err
	if res.OK {
		if m.reminders != nil {
			m.Active = m.reminders.Snapshot()
		}
		m.Status = StatusBar{Text: res.Message()}
		m.log.Debug("reminder saved", zap.String("preview", model.FormatPreview(m.Active.Active)))
		return m
	}
	if res.Code == scheduler.SavePermissionDenied {
		m.Permission = notify.PermissionDenied
	}
	m.Status = StatusBar{Text: res.Message(), IsError: true}
	m.log.Debug("reminder save refused", zap.String("code", string(res.Code)), zap.Error(res.Err))
	return m
}

// onSnapshot adopts new scheduler state. A clean draft follows the active
// rule; a draft with unsaved edits is kept.
func (m Model) onSnapshot(snap scheduler.Snapshot) Model {
	clean := !m.Dirty()
	m.Active = snap
	if clean && !m.Saving {
		m.Draft = snap.Active.Clone()
	}
	m.refreshPermission()
	return m
}

func (m Model) missedBanner() string {
	missed := m.Active.LastMissed
	if missed.IsZero() || missed.Equal(m.dismissedAt) {
		return ""
	}
	return fmt.Sprintf("You missed a bedtime reminder at %s. [x] dismiss", model.FormatInstant(m.Active.Active, missed))
}

func (m Model) nextLabel() string {
	if !m.Active.HasNext {
		return ""
	}
	loc := model.Location(m.Active.Active)
	return fmt.Sprintf("%s %s", m.Active.Next.In(loc).Format("Mon Jan 2"), model.FormatInstant(m.Active.Active, m.Active.Next))
}
