package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/commands"
	"github.com/sandeepkv93/visionary/internal/model"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.Focus()
	m.commandInput.SetValue("")
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m = m.closePalette()
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Time: func(a commands.TimeArgs) (commands.Result, error) {
			m.Draft.Hour, m.Draft.Minute = a.Hour, a.Minute
			return commands.Result{Message: "time set to " + model.FormatTime(a.Hour, a.Minute, nil)}, nil
		},
		Days: func(a commands.DaysArgs) (commands.Result, error) {
			m.Draft.EveryDay = false
			m.Draft.Days = a.Days
			return commands.Result{Message: "days: " + model.FormatPreview(withEnabled(m.Draft))}, nil
		},
		EveryDay: func(a commands.EveryDayArgs) (commands.Result, error) {
			m.Draft.EveryDay = a.On
			if a.On {
				m.Draft.Days = model.AllDays()
				return commands.Result{Message: "every day on"}, nil
			}
			return commands.Result{Message: "every day off"}, nil
		},
		Enable: func() (commands.Result, error) {
			m.Draft.Enabled = true
			return commands.Result{Message: "reminder enabled in draft"}, nil
		},
		Disable: func() (commands.Result, error) {
			m.Draft.Enabled = false
			return commands.Result{Message: "reminder disabled in draft"}, nil
		},
		Save: func() (commands.Result, error) {
			if m.Saving {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "save already in progress"}
			}
			m, follow = m.startSave()
			return commands.Result{Message: "saving..."}, nil
		},
		Reset: func() (commands.Result, error) {
			m.resetDraft()
			return commands.Result{Message: "draft reset"}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "exercises":
				m, follow = m.switchView(ViewExercises)
			case "dashboard":
				m, follow = m.switchView(ViewDashboard)
			case "acuity":
				m, follow = m.switchView(ViewAcuity)
			default:
				m, follow = m.switchView(ViewSleep)
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", a.Subject)}, nil
		},
	})
	m = m.closePalette()
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if m.Status.IsError {
		// startSave may have reported a failure
		return m, follow
	}
	m.Status = StatusBar{Text: res.Message}
	return m, follow
}

// withEnabled renders the day set even when the draft is switched off.
func withEnabled(r model.SleepReminder) model.SleepReminder {
	r.Enabled = true
	return r
}
