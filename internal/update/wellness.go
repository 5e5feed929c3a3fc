package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/checkins"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/results"
	"github.com/sandeepkv93/visionary/internal/views"
)

// CheckinService keeps the daily mood check-ins behind the dashboard.
type CheckinService interface {
	Add(ctx context.Context, mood int, note string) (checkins.Entry, error)
	Summary(ctx context.Context, now time.Time) (checkins.Summary, error)
}

// ResultRecorder stores a finished screening run.
type ResultRecorder interface {
	Add(ctx context.Context, in results.Input) (model.TestResult, error)
}

type DashboardState struct {
	Summary    checkins.Summary
	Loaded     bool
	MoodCursor int
	Saving     bool
}

type AcuityVariant string

const (
	AcuityNear     AcuityVariant = "near"
	AcuityDistance AcuityVariant = "distance"
)

// TestID is the results id a run of this variant is recorded under.
func (v AcuityVariant) TestID() string {
	if v == AcuityDistance {
		return "acuity-distance"
	}
	return "acuity-near"
}

// DistanceCM is the viewing distance the run is done at.
func (v AcuityVariant) DistanceCM() float64 {
	if v == AcuityDistance {
		return 300
	}
	return 40
}

type AcuityState struct {
	Variant  AcuityVariant
	Eye      model.Eye
	Stair    results.Staircase
	Rotation results.Rotation
	Saving   bool
}

type CheckinsLoadedMsg struct {
	Summary checkins.Summary
	Err     error
}

type CheckinSavedMsg struct {
	Entry checkins.Entry
	Err   error
}

type AcuitySavedMsg struct {
	Result model.TestResult
	Err    error
}

var acuityEyes = []model.Eye{model.EyeBoth, model.EyeRight, model.EyeLeft}

func newAcuityState(variant AcuityVariant, eye model.Eye, rotate func() results.Rotation) AcuityState {
	return AcuityState{
		Variant:  variant,
		Eye:      eye,
		Stair:    *results.NewStaircase(),
		Rotation: rotate(),
	}
}

func (m Model) loadCheckinsCmd() tea.Cmd {
	if m.checkins == nil {
		return nil
	}
	svc, ctx, now := m.checkins, m.ctx, m.now()
	return func() tea.Msg {
		sum, err := svc.Summary(ctx, now)
		return CheckinsLoadedMsg{Summary: sum, Err: err}
	}
}

func (m Model) onCheckinsLoaded(msg CheckinsLoadedMsg) Model {
	if msg.Err != nil {
		m.Status = StatusBar{Text: "could not load check-ins: " + msg.Err.Error(), IsError: true}
		return m
	}
	m.Dashboard.Summary = msg.Summary
	m.Dashboard.Loaded = true
	if msg.Summary.CheckedToday {
		m.Dashboard.MoodCursor = moodIndex(msg.Summary.Today.Mood)
	}
	return m
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.Dashboard.MoodCursor = max(m.Dashboard.MoodCursor-1, 0)
	case "l", "right":
		m.Dashboard.MoodCursor = min(m.Dashboard.MoodCursor+1, len(checkins.Moods)-1)
	case "enter", " ":
		return m.startCheckin()
	case "r":
		return m, m.loadCheckinsCmd()
	}
	return m, nil
}

func (m Model) startCheckin() (Model, tea.Cmd) {
	if m.Dashboard.Saving {
		return m, nil
	}
	if m.checkins == nil {
		m.Status = StatusBar{Text: "check-in service unavailable", IsError: true}
		return m, nil
	}
	m.Dashboard.Saving = true
	mood := checkins.Moods[m.Dashboard.MoodCursor].Value
	svc, ctx := m.checkins, m.ctx
	save := func() tea.Msg {
		entry, err := svc.Add(ctx, mood, "")
		return CheckinSavedMsg{Entry: entry, Err: err}
	}
	return m, tea.Batch(save, m.saveSpinner.Tick)
}

func (m Model) onCheckinSaved(msg CheckinSavedMsg) (Model, tea.Cmd) {
	m.Dashboard.Saving = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: "could not save check-in: " + msg.Err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: fmt.Sprintf("check-in saved for %s: %s", msg.Entry.Day, checkins.MoodLabel(msg.Entry.Mood))}
	m.log.Debug("checkin saved", zap.String("day", msg.Entry.Day), zap.Int("mood", msg.Entry.Mood))
	return m, m.loadCheckinsCmd()
}

func (m Model) handleAcuityKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Acuity.Saving {
		return m, nil
	}
	switch msg.String() {
	case "right", "l":
		return m.answerAcuity(results.RotRight), nil
	case "down", "j":
		return m.answerAcuity(results.RotDown), nil
	case "left", "h":
		return m.answerAcuity(results.RotLeft), nil
	case "up", "k":
		return m.answerAcuity(results.RotUp), nil
	case "e":
		i := 0
		for j, eye := range acuityEyes {
			if eye == m.Acuity.Eye {
				i = j
			}
		}
		m.Acuity.Eye = acuityEyes[(i+1)%len(acuityEyes)]
		m.Status = StatusBar{Text: "testing eye: " + string(m.Acuity.Eye)}
	case "n":
		variant := AcuityDistance
		if m.Acuity.Variant == AcuityDistance {
			variant = AcuityNear
		}
		m.Acuity = newAcuityState(variant, m.Acuity.Eye, m.rotate)
		m.Status = StatusBar{Text: fmt.Sprintf("%s acuity, sit at %.0f cm", variant, variant.DistanceCM())}
	case "r":
		m.Acuity = newAcuityState(m.Acuity.Variant, m.Acuity.Eye, m.rotate)
		m.Status = StatusBar{Text: "acuity run restarted"}
	case "s":
		return m.startAcuitySave()
	}
	return m, nil
}

func (m Model) answerAcuity(answer results.Rotation) Model {
	m.Acuity.Stair.Judge(answer == m.Acuity.Rotation)
	m.Acuity.Rotation = m.rotate()
	return m
}

func (m Model) startAcuitySave() (Model, tea.Cmd) {
	if m.results == nil {
		m.Status = StatusBar{Text: "results service unavailable", IsError: true}
		return m, nil
	}
	if m.Acuity.Stair.Trials() == 0 {
		m.Status = StatusBar{Text: "answer at least once before saving", IsError: true}
		return m, nil
	}
	m.Acuity.Saving = true
	in := m.Acuity.Stair.Input(m.Acuity.Variant.TestID())
	in.Eye = m.Acuity.Eye
	distance := m.Acuity.Variant.DistanceCM()
	in.DistanceCM = &distance
	svc, ctx := m.results, m.ctx
	return m, func() tea.Msg {
		r, err := svc.Add(ctx, in)
		return AcuitySavedMsg{Result: r, Err: err}
	}
}

func (m Model) onAcuitySaved(msg AcuitySavedMsg) Model {
	m.Acuity.Saving = false
	if msg.Err != nil {
		m.LastError = msg.Err
		m.Status = StatusBar{Text: "could not save result: " + msg.Err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("recorded %s (%s) %s %s", msg.Result.Label, msg.Result.Eye, msg.Result.Value, msg.Result.Unit)}
	m.Acuity = newAcuityState(m.Acuity.Variant, m.Acuity.Eye, m.rotate)
	return m
}

func (m Model) renderCheckinView() string {
	if m.checkins == nil {
		return "check-ins unavailable"
	}
	chips := make([]views.MoodChip, 0, len(checkins.Moods))
	for i, mood := range checkins.Moods {
		chips = append(chips, views.MoodChip{Value: mood.Value, Label: mood.Label, Cursor: i == m.Dashboard.MoodCursor})
	}
	return views.RenderCheckinPanel(views.CheckinPanelData{
		Moods:        chips,
		CheckedToday: m.Dashboard.Summary.CheckedToday,
		TodayLabel:   checkins.MoodLabel(m.Dashboard.Summary.Today.Mood),
		Saving:       m.Dashboard.Saving,
		Spinner:      m.saveSpinner.View(),
	})
}

func (m Model) renderStreakView() string {
	if !m.Dashboard.Loaded {
		return "loading check-ins..."
	}
	series := make([]int, 0, len(m.Dashboard.Summary.Last7))
	days := make([]string, 0, len(m.Dashboard.Summary.Last7))
	for _, d := range m.Dashboard.Summary.Last7 {
		series = append(series, d.Mood)
		days = append(days, d.Day)
	}
	return views.RenderStreakPanel(views.StreakPanelData{
		Streak: m.Dashboard.Summary.Streak,
		Series: series,
		Days:   days,
	})
}

func (m Model) renderAcuityView() string {
	stair := m.Acuity.Stair
	last := len(results.SnellenLadder) - 1
	return views.RenderAcuityPanel(views.AcuityPanelData{
		Variant:      string(m.Acuity.Variant),
		Eye:          string(m.Acuity.Eye),
		Snellen:      stair.Snellen(),
		LogMAR:       fmt.Sprintf("%.2f", stair.LogMAR()),
		Rotation:     int(m.Acuity.Rotation),
		Scale:        1 + (last-stair.Index())/4,
		Trials:       stair.Trials(),
		ProgressView: m.sessionBar.ViewAs(float64(stair.Index()) / float64(last)),
		Last:         stair.Last(),
		Saving:       m.Acuity.Saving,
	})
}

func (m Model) renderAcuityInstructions() string {
	distance := "40 cm"
	if m.Acuity.Variant == AcuityDistance {
		distance = "2-3 m"
	}
	return fmt.Sprintf(`instructions:
Sit %s from the screen and cover the eye you are not testing.
Point the arrow keys the way the open side of the E faces.
Two right answers in a row shrink the line; a miss enlarges it.
Save when the line stops getting smaller.`, distance)
}

func moodIndex(mood int) int {
	for i, m := range checkins.Moods {
		if m.Value == mood {
			return i
		}
	}
	return defaultMoodCursor
}

// defaultMoodCursor points at "Okay".
const defaultMoodCursor = 2
