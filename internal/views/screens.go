package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type DayChip struct {
	Label    string
	Selected bool
	Cursor   bool
}

type SleepPanelData struct {
	Enabled  bool
	EveryDay bool
	Time     string
	Days     []DayChip
	Summary  string
	Dirty    bool
	Saving   bool
	Spinner  string
}

type ActivePanelData struct {
	Preview      string
	State        string
	Next         string
	UpcomingView string
	Permission   string
}

type ExercisePanelData struct {
	Filter   string
	ListView string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

type BannerData struct {
	Level string
	Text  string
}

var (
	chipStyle     = lipgloss.NewStyle().Padding(0, 1)
	chipOnStyle   = chipStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	chipMuted     = chipStyle.Foreground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	warnBanner    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorBanner   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoBanner    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dirtyMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	checkboxOn    = "[x]"
	checkboxOff   = "[ ]"
	defaultMarker = " "
)

func checkbox(on bool) string {
	if on {
		return checkboxOn
	}
	return checkboxOff
}

func RenderSleepPanel(data SleepPanelData) string {
	var b strings.Builder
	title := "bedtime reminder:"
	if data.Dirty {
		title += " " + dirtyMarker.Render("(unsaved)")
	}
	b.WriteString(labelStyle.Render(title) + "\n")
	b.WriteString(fmt.Sprintf("%s enabled    [e]\n", checkbox(data.Enabled)))
	b.WriteString(fmt.Sprintf("%s every day  [a]\n", checkbox(data.EveryDay)))
	b.WriteString(fmt.Sprintf("time: %s   [k/j] +/-15m [K/J] +/-1h\n\n", data.Time))

	chips := make([]string, 0, len(data.Days))
	markers := make([]string, 0, len(data.Days))
	for _, d := range data.Days {
		style := chipStyle
		switch {
		case data.EveryDay:
			style = chipMuted
		case d.Selected:
			style = chipOnStyle
		}
		chip := style.Render(d.Label)
		chips = append(chips, chip)
		marker := defaultMarker
		if d.Cursor {
			marker = "^"
		}
		markers = append(markers, lipgloss.PlaceHorizontal(lipgloss.Width(chip), lipgloss.Center, marker))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n")
	b.WriteString(strings.Join(markers, "") + "\n")
	b.WriteString("days: [h/l] move [space] toggle\n\n")
	b.WriteString(data.Summary + "\n")
	if data.Saving {
		b.WriteString(data.Spinner + " saving...\n")
	}
	b.WriteString("actions: [s]save [r]reset")
	return strings.TrimSpace(b.String())
}

func RenderActivePanel(data ActivePanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("active:") + "\n")
	b.WriteString(fmt.Sprintf("schedule: %s\n", data.Preview))
	b.WriteString(fmt.Sprintf("state: %s\n", data.State))
	if data.Next != "" {
		b.WriteString(fmt.Sprintf("next: %s\n", data.Next))
	} else {
		b.WriteString("next: (none)\n")
	}
	b.WriteString(fmt.Sprintf("notifications: %s\n", data.Permission))
	if data.UpcomingView != "" {
		b.WriteString("\nupcoming:\n")
		b.WriteString(data.UpcomingView)
	}
	return strings.TrimSpace(b.String())
}

func RenderExercisesPanel(data ExercisePanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("exercises:") + "\n")
	if data.Filter != "" {
		b.WriteString(fmt.Sprintf("filter: %s\n", data.Filter))
	}
	b.WriteString("actions: [j/k]move [c]category\n")
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func RenderExerciseDetail(rendered string) string {
	if strings.TrimSpace(rendered) == "" {
		return "(no exercise selected)"
	}
	return rendered
}

func RenderBanner(data BannerData) string {
	text := strings.TrimSpace(data.Text)
	if text == "" {
		return ""
	}
	switch data.Level {
	case "error":
		return errorBanner.Render("! " + text)
	case "warn":
		return warnBanner.Render("! " + text)
	default:
		return infoBanner.Render("* " + text)
	}
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderNotification(title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if title == "" {
		return fmt.Sprintf("notification: %s", body)
	}
	return fmt.Sprintf("notification: [%s] %s", title, body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

type SessionPanelData struct {
	Title        string
	Mode         string
	Label        string
	ProgressView string
	Running      bool
	Done         bool
	HasOptions   bool
}

func RenderSessionPanel(data SessionPanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("session:") + "\n")
	b.WriteString(fmt.Sprintf("exercise: %s (%s)\n", data.Title, data.Mode))
	b.WriteString(fmt.Sprintf("now: %s\n", data.Label))
	b.WriteString(data.ProgressView + "\n")
	switch {
	case data.Done:
		b.WriteString("status: complete\n")
	case data.Running:
		b.WriteString("status: running\n")
	default:
		b.WriteString("status: ready\n")
	}
	actions := "actions: [space]start/pause [r]reset [esc]close"
	switch data.Mode {
	case "reps":
		actions = "actions: [space]+1 rep [r]reset [esc]close"
	case "info":
		actions = "actions: [space]mark done [esc]close"
	}
	if data.HasOptions {
		actions += " [o]length"
	}
	b.WriteString(actions)
	return strings.TrimSpace(b.String())
}
