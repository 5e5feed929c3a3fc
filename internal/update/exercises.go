package update

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleExercisesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if next, cmd, handled := m.handleSessionKey(msg); handled {
		return next, cmd
	}
	switch msg.String() {
	case "enter", " ":
		ex, ok := m.selectedExercise()
		if !ok {
			return m, nil
		}
		s := NewSession(ex)
		s.gen = m.Session.gen
		m.Session = s
		m.Status = StatusBar{Text: "session ready: " + ex.Title}
		return m, nil
	case "c":
		m.cycleCategory()
		return m, nil
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd
	case "esc":
		return m, nil
	}
	before := m.exerciseList.Index()
	var cmd tea.Cmd
	m.exerciseList, cmd = m.exerciseList.Update(msg)
	if m.exerciseList.Index() != before && m.Session.Active() && !m.Session.Running {
		m.Session = SessionState{gen: m.Session.gen}
	}
	return m, cmd
}

func (m *Model) cycleCategory() {
	options := append([]string{"All"}, m.catalog.Categories()...)
	i := slices.Index(options, m.Exercises.Category)
	m.Exercises.Category = options[(i+1)%len(options)]
	m.refreshExercises()
	m.Status = StatusBar{Text: "category: " + m.Exercises.Category}
}
