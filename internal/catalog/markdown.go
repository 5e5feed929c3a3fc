package catalog

import (
	"fmt"
	"strings"
)

// Markdown renders an exercise as a document for the detail pane.
func Markdown(e Exercise) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Title)
	meta := []string{e.Category, e.Level}
	if l := e.Length(); l != "" {
		meta = append(meta, l)
	}
	fmt.Fprintf(&b, "_%s_\n\n%s\n\n", strings.Join(meta, " · "), e.Description)

	b.WriteString("## Steps\n\n")
	for i, step := range e.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("\n## Benefits\n\n")
	for _, benefit := range e.Benefits {
		fmt.Fprintf(&b, "- %s\n", benefit)
	}

	if session := sessionLine(e); session != "" {
		fmt.Fprintf(&b, "\n## Session\n\n%s\n", session)
	}
	return b.String()
}

func sessionLine(e Exercise) string {
	switch e.Mode {
	case ModeTimer:
		if len(e.OptionsSeconds) > 0 {
			opts := make([]string, 0, len(e.OptionsSeconds))
			for _, s := range e.OptionsSeconds {
				opts = append(opts, formatSeconds(s))
			}
			return fmt.Sprintf("Timer: %s (options: %s)", formatSeconds(e.TimerSeconds), strings.Join(opts, ", "))
		}
		return "Timer: " + formatSeconds(e.TimerSeconds)
	case ModeInterval:
		parts := make([]string, 0, len(e.Intervals))
		for _, iv := range e.Intervals {
			parts = append(parts, fmt.Sprintf("%s %s", iv.Label, formatSeconds(iv.Seconds)))
		}
		cycles := e.Cycles
		if cycles <= 0 {
			cycles = 1
		}
		return fmt.Sprintf("Intervals: %s × %d", strings.Join(parts, " → "), cycles)
	case ModeReps:
		return fmt.Sprintf("Repetitions: %d", e.Reps)
	default:
		return ""
	}
}

func formatSeconds(s int) string {
	if s >= 60 && s%60 == 0 {
		return fmt.Sprintf("%d min", s/60)
	}
	if s > 60 {
		return fmt.Sprintf("%dm%02ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}
