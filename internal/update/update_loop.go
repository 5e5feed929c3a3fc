package update

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/views"
)

func (m Model) Init() tea.Cmd {
	return m.loadCheckinsCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil
	case tea.FocusMsg:
		return m, m.visibilityCmd(true)
	case tea.BlurMsg:
		return m, m.visibilityCmd(false)
	case spinner.TickMsg:
		if m.Saving || m.Dashboard.Saving {
			var cmd tea.Cmd
			m.saveSpinner, cmd = m.saveSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			return m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case SnapshotMsg:
		return m.onSnapshot(typed.Snapshot), nil
	case SaveResultMsg:
		return m.onSaveResult(typed.Result), nil
	case ReminderMsg:
		m.notify(typed.Title, typed.Body)
		m.Status = StatusBar{Text: typed.Title + ": " + typed.Body}
		return m, nil
	case SessionTickMsg:
		return m.onSessionTick(typed)
	case CheckinsLoadedMsg:
		return m.onCheckinsLoaded(typed), nil
	case CheckinSavedMsg:
		return m.onCheckinSaved(typed)
	case AcuitySavedMsg:
		return m.onAcuitySaved(typed), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Palette.Active {
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handlePaletteKey(msg)
	}

	switch msg.String() {
	case "/":
		return m.openPalette(), nil
	case m.Keys.Sleep:
		return m.switchView(ViewSleep)
	case m.Keys.Exercises:
		return m.switchView(ViewExercises)
	case m.Keys.Dashboard:
		return m.switchView(ViewDashboard)
	case m.Keys.Acuity:
		return m.switchView(ViewAcuity)
	case "tab":
		i := slices.Index(viewOrder, m.CurrentView)
		return m.switchView(viewOrder[(i+1)%len(viewOrder)])
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewSleep:
		return m.handleSleepKey(msg)
	case ViewExercises:
		return m.handleExercisesKey(msg)
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewAcuity:
		return m.handleAcuityKey(msg)
	}
	return m, nil
}

// switchView changes the current view; the dashboard reloads its check-ins
// on every visit so a new day is picked up.
func (m Model) switchView(v View) (Model, tea.Cmd) {
	m.CurrentView = v
	if v == ViewDashboard {
		return m, m.loadCheckinsCmd()
	}
	return m, nil
}

// visibilityCmd reports terminal focus to the scheduler off the update
// goroutine; regaining focus may deliver catch-up notifications.
func (m Model) visibilityCmd(visible bool) tea.Cmd {
	if m.reminders == nil {
		return nil
	}
	svc, ctx := m.reminders, m.ctx
	return func() tea.Msg {
		svc.SetVisible(ctx, visible)
		return nil
	}
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewSleep:
		leftPane = m.renderSleepView()
		rightPane = m.renderActiveView()
	case ViewExercises:
		leftPane = m.renderExercisesView()
		rightPane = m.renderExerciseDetail()
	case ViewDashboard:
		leftPane = m.renderCheckinView()
		rightPane = m.renderStreakView()
	case ViewAcuity:
		leftPane = m.renderAcuityView()
		rightPane = m.renderAcuityInstructions()
	}
	if palette := m.renderCommandPalette(); palette != "" {
		rightPane += "\n\n" + palette
	}
	if h := m.renderHelpIfVisible(); h != "" {
		rightPane += "\n\n" + h
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("visionary | view: %s | reminder: %s", m.CurrentView, model.FormatPreview(m.Active.Active)),
		Banners:      m.banners(),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s sleep | %s exercises | %s dashboard | %s acuity | / cmd | %s help | %s quit",
			m.Keys.Sleep, m.Keys.Exercises, m.Keys.Dashboard, m.Keys.Acuity, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewSleep, ViewExercises, ViewDashboard, ViewAcuity:
		return true
	default:
		return false
	}
}
