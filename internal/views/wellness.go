package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type MoodChip struct {
	Value  int
	Label  string
	Cursor bool
}

type CheckinPanelData struct {
	Moods        []MoodChip
	CheckedToday bool
	TodayLabel   string
	Saving       bool
	Spinner      string
}

type StreakPanelData struct {
	Streak int
	// Series holds one mood per day, oldest first; 0 means no check-in.
	Series []int
	Days   []string
}

type AcuityPanelData struct {
	Variant  string
	Eye      string
	Snellen  string
	LogMAR   string
	Rotation int
	// Scale is the glyph magnification, 1 for the smallest line.
	Scale        int
	Trials       int
	ProgressView string
	Last         string
	Saving       bool
}

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bigNumber  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	moodBars   = []string{"▂", "▃", "▅", "▆", "█"}
)

func RenderCheckinPanel(data CheckinPanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("how are your eyes feeling today?") + "\n")
	if data.CheckedToday {
		b.WriteString(fmt.Sprintf("Thanks! Today's check-in is saved (%s).\n", data.TodayLabel))
		b.WriteString("checking in again replaces it\n\n")
	} else {
		b.WriteString("a quick daily check helps track trends over time\n\n")
	}

	chips := make([]string, 0, len(data.Moods))
	markers := make([]string, 0, len(data.Moods))
	for _, mood := range data.Moods {
		style := chipStyle
		if mood.Cursor {
			style = chipOnStyle
		}
		chip := style.Render(fmt.Sprintf("%d %s", mood.Value, mood.Label))
		chips = append(chips, chip)
		marker := defaultMarker
		if mood.Cursor {
			marker = "^"
		}
		markers = append(markers, lipgloss.PlaceHorizontal(lipgloss.Width(chip), lipgloss.Center, marker))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n")
	b.WriteString(strings.Join(markers, "") + "\n")
	if data.Saving {
		b.WriteString(data.Spinner + " saving...\n")
	}
	b.WriteString("mood: [h/l] move [enter] save today's check-in")
	return strings.TrimSpace(b.String())
}

func RenderStreakPanel(data StreakPanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("current streak:") + "\n")
	b.WriteString(bigNumber.Render(fmt.Sprintf("%dd", data.Streak)) + "\n\n")
	b.WriteString(MoodSparkline(data.Series) + "\n")
	if len(data.Days) > 0 {
		b.WriteString(emptyStyle.Render(data.Days[0]+" .. "+data.Days[len(data.Days)-1]) + "\n")
	}
	b.WriteString("last 7 days mood (higher = better)")
	return b.String()
}

// MoodSparkline draws one bar per day; days without a check-in show a dot.
func MoodSparkline(series []int) string {
	cells := make([]string, 0, len(series))
	for _, mood := range series {
		if mood < 1 || mood > len(moodBars) {
			cells = append(cells, emptyStyle.Render("·"))
			continue
		}
		cells = append(cells, barStyle.Render(moodBars[mood-1]))
	}
	return strings.Join(cells, " ")
}

func RenderAcuityPanel(data AcuityPanelData) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s acuity (tumbling E):", data.Variant)) + "\n")
	b.WriteString(fmt.Sprintf("eye: %s [e]   variant [n]   line: %s · logMAR %s\n", data.Eye, data.Snellen, data.LogMAR))
	if data.ProgressView != "" {
		b.WriteString(data.ProgressView + "\n")
	}
	b.WriteString("\n" + lipgloss.PlaceHorizontal(24, lipgloss.Center, TumblingE(data.Rotation, data.Scale)) + "\n\n")
	b.WriteString(fmt.Sprintf("answers: %d", data.Trials))
	if data.Last != "" {
		b.WriteString("   last: " + data.Last)
	}
	b.WriteString("\n")
	if data.Saving {
		b.WriteString("saving...\n")
	}
	b.WriteString("point with arrows or h/j/k/l  [s]save [r]restart")
	return b.String()
}

// eGlyph opens to the right.
var eGlyph = []string{
	"#####",
	"#....",
	"####.",
	"#....",
	"#####",
}

// TumblingE renders the optotype turned clockwise in quarter turns
// (0 right, 1 down, 2 left, 3 up) and magnified by scale.
func TumblingE(quarterTurns, scale int) string {
	grid := eGlyph
	for i := 0; i < ((quarterTurns%4)+4)%4; i++ {
		grid = rotateClockwise(grid)
	}
	if scale < 1 {
		scale = 1
	}
	lines := make([]string, 0, len(grid)*scale)
	for _, row := range grid {
		var line strings.Builder
		for _, c := range row {
			cell := " "
			if c == '#' {
				cell = "█"
			}
			line.WriteString(strings.Repeat(cell, 2*scale))
		}
		for i := 0; i < scale; i++ {
			lines = append(lines, strings.TrimRight(line.String(), " "))
		}
	}
	return strings.Join(lines, "\n")
}

func rotateClockwise(grid []string) []string {
	n := len(grid)
	out := make([]string, n)
	for col := 0; col < n; col++ {
		var row strings.Builder
		for r := n - 1; r >= 0; r-- {
			row.WriteByte(grid[r][col])
		}
		out[col] = row.String()
	}
	return out
}
