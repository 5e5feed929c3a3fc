package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/visionary/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: toKeyBindings(m.globalBindings()),
			full:  [][]key.Binding{toKeyBindings(m.globalBindings()), toKeyBindings(m.viewBindings())},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Sleep, Action: "sleep reminder"},
		{Key: m.Keys.Exercises, Action: "eye exercises"},
		{Key: m.Keys.Dashboard, Action: "daily check-in"},
		{Key: m.Keys.Acuity, Action: "acuity test"},
		{Key: "tab", Action: "next view"},
		{Key: "/", Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewSleep:
		return []KeyBinding{
			{Key: "e", Action: "toggle enabled"},
			{Key: "a", Action: "toggle every day"},
			{Key: "h/l", Action: "move day cursor"},
			{Key: "space", Action: "toggle day"},
			{Key: "k/j", Action: "time +/- 15 minutes"},
			{Key: "K/J", Action: "time +/- 1 hour"},
			{Key: "s", Action: "save"},
			{Key: "r", Action: "reset draft"},
			{Key: "x", Action: "dismiss missed banner"},
		}
	case ViewExercises:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "c", Action: "cycle category"},
			{Key: "enter", Action: "open session"},
			{Key: "space", Action: "start/pause, count rep, mark done"},
			{Key: "o", Action: "next timer length"},
			{Key: "r", Action: "reset session"},
			{Key: "esc", Action: "close session"},
			{Key: "pgup/pgdown", Action: "scroll details"},
		}
	case ViewDashboard:
		return []KeyBinding{
			{Key: "h/l", Action: "pick mood"},
			{Key: "enter", Action: "save today's check-in"},
			{Key: "r", Action: "reload"},
		}
	case ViewAcuity:
		return []KeyBinding{
			{Key: "arrows", Action: "answer the E direction"},
			{Key: "e", Action: "cycle eye"},
			{Key: "n", Action: "near/distance"},
			{Key: "s", Action: "save result"},
			{Key: "r", Action: "restart run"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
