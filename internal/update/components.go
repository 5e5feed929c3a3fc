package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/views"
)

const (
	paneWidth      = 56
	upcomingCount  = 5
	detailHeight   = 14
	exerciseHeight = 16
)

func (m *Model) initBubbleComponents() {
	m.exerciseList = list.New([]list.Item{}, list.NewDefaultDelegate(), paneWidth, exerciseHeight)
	m.exerciseList.Title = "Exercises"
	m.exerciseList.SetShowHelp(false)
	m.exerciseList.SetFilteringEnabled(false)
	m.exerciseList.SetShowStatusBar(false)
	m.exerciseList.KeyMap.Quit.SetEnabled(false)
	m.exerciseList.KeyMap.ForceQuit.SetEnabled(false)
	m.exerciseList.KeyMap.ShowFullHelp.SetEnabled(false)
	m.exerciseList.KeyMap.CloseFullHelp.SetEnabled(false)

	cols := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 10},
	}
	m.upcoming = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(upcomingCount+1))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 128
	m.commandInput.Width = 48

	m.sessionBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.saveSpinner = spinner.New()
	m.saveSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailView = viewport.New(paneWidth, detailHeight)
}

// refreshExercises reloads the list for the current category filter.
func (m *Model) refreshExercises() {
	m.Exercises.Items = m.catalog.Find(catalog.Query{Category: m.Exercises.Category})
	items := make([]list.Item, 0, len(m.Exercises.Items))
	for _, e := range m.Exercises.Items {
		desc := strings.Join(nonEmpty(e.Category, e.Level, e.Length()), " · ")
		items = append(items, listItem{title: e.Title, description: desc})
	}
	m.exerciseList.SetItems(items)
	m.exerciseList.Select(0)
}

func (m *Model) syncBubbleData() {
	if m.width > 0 {
		m.helpModel.Width = m.width
	}
	m.upcoming.SetRows(upcomingRows(m.Active.Active, m.now()))

	ex, ok := m.selectedExercise()
	if !ok {
		m.detailFor = ""
		m.detailView.SetContent("")
		return
	}
	if m.detailFor != ex.ID {
		m.detailFor = ex.ID
		m.detailView.SetContent(m.exerciseMarkdown(ex))
		m.detailView.GotoTop()
	}
}

func (m Model) selectedExercise() (catalog.Exercise, bool) {
	idx := m.exerciseList.Index()
	if idx < 0 || idx >= len(m.Exercises.Items) {
		return catalog.Exercise{}, false
	}
	return m.Exercises.Items[idx], true
}

func (m Model) exerciseMarkdown(ex catalog.Exercise) string {
	if out, ok := m.detailCache[ex.ID]; ok {
		return out
	}
	out := views.RenderMarkdown(catalog.Markdown(ex), paneWidth)
	m.detailCache[ex.ID] = out
	return out
}

func upcomingRows(rule model.SleepReminder, now time.Time) []table.Row {
	// a single-day rule needs a week per hit
	occs := model.OccurrencesBetween(rule, now, now.AddDate(0, 0, 7*upcomingCount))
	rows := make([]table.Row, 0, upcomingCount)
	loc := model.Location(rule)
	for _, at := range occs {
		if len(rows) == upcomingCount {
			break
		}
		local := at.In(loc)
		rows = append(rows, table.Row{
			model.DayLabel(local.Weekday()),
			local.Format("2006-01-02"),
			model.FormatInstant(rule, at),
		})
	}
	return rows
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func formatClock(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%d:%02d", totalSec/60, totalSec%60)
}
