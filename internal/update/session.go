package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/visionary/internal/catalog"
)

const (
	defaultTimerSeconds = 60
	defaultRepGoal      = 10
)

// SessionState runs one exercise: a countdown, an interval sequence, a rep
// counter or a plain checklist, depending on the exercise mode.
type SessionState struct {
	ExerciseID string
	Title      string
	Mode       catalog.Mode
	Running    bool
	Done       bool

	Initial   int
	Remaining int
	Options   []int

	Intervals []catalog.Interval
	Index     int
	Cycle     int
	Cycles    int

	Reps    int
	RepGoal int

	gen int
}

func NewSession(e catalog.Exercise) SessionState {
	s := SessionState{
		ExerciseID: e.ID,
		Title:      e.Title,
		Mode:       e.Mode,
		Options:    e.OptionsSeconds,
		Intervals:  e.Intervals,
		Cycles:     e.Cycles,
		RepGoal:    e.Reps,
		Initial:    e.TimerSeconds,
	}
	if s.Initial <= 0 {
		s.Initial = defaultTimerSeconds
	}
	if s.Cycles <= 0 {
		s.Cycles = 1
	}
	if s.RepGoal <= 0 {
		s.RepGoal = defaultRepGoal
	}
	s.Reset()
	return s
}

func (s SessionState) Active() bool {
	return s.ExerciseID != ""
}

func (s *SessionState) Reset() {
	s.Running = false
	s.Done = false
	s.Reps = 0
	s.Index = 0
	s.Cycle = 1
	switch s.Mode {
	case catalog.ModeInterval:
		s.Remaining = 0
		if len(s.Intervals) > 0 {
			s.Remaining = s.Intervals[0].Seconds
		}
	default:
		s.Remaining = s.Initial
	}
}

// Toggle is the primary action: start or pause a timed session, count a rep,
// or mark an instruction-only exercise done. It reports whether a tick loop
// should start.
func (s *SessionState) Toggle() bool {
	switch s.Mode {
	case catalog.ModeReps:
		s.AddRep()
		return false
	case catalog.ModeInfo, "":
		s.Done = !s.Done
		return false
	case catalog.ModeInterval:
		if len(s.Intervals) == 0 {
			return false
		}
	}
	if s.Running {
		s.Running = false
		return false
	}
	if s.Done || s.Remaining <= 0 {
		s.Reset()
	}
	s.Running = true
	s.gen++
	return true
}

func (s *SessionState) AddRep() {
	if s.Reps < s.RepGoal {
		s.Reps++
	}
	s.Done = s.Reps >= s.RepGoal
}

// CycleOption switches a timer to its next preset length. Running sessions
// are stopped.
func (s *SessionState) CycleOption() bool {
	if s.Mode != catalog.ModeTimer || len(s.Options) == 0 {
		return false
	}
	next := s.Options[0]
	for i, opt := range s.Options {
		if opt == s.Initial && i+1 < len(s.Options) {
			next = s.Options[i+1]
			break
		}
	}
	s.Initial = next
	s.Reset()
	return true
}

// Tick advances a running session by one second.
func (s *SessionState) Tick() {
	if !s.Running {
		return
	}
	switch s.Mode {
	case catalog.ModeInterval:
		if s.Remaining > 1 {
			s.Remaining--
			return
		}
		if s.Index < len(s.Intervals)-1 {
			s.Index++
			s.Remaining = s.Intervals[s.Index].Seconds
			return
		}
		if s.Cycle < s.Cycles {
			s.Cycle++
			s.Index = 0
			s.Remaining = s.Intervals[0].Seconds
			return
		}
		s.Remaining = 0
	default:
		if s.Remaining > 0 {
			s.Remaining--
		}
		if s.Remaining > 0 {
			return
		}
	}
	s.Running = false
	s.Done = true
}

func (s SessionState) TotalSeconds() int {
	switch s.Mode {
	case catalog.ModeInterval:
		return s.perCycle() * s.Cycles
	case catalog.ModeTimer:
		return s.Initial
	default:
		return 0
	}
}

func (s SessionState) ElapsedSeconds() int {
	switch s.Mode {
	case catalog.ModeInterval:
		if len(s.Intervals) == 0 {
			return 0
		}
		elapsed := (s.Cycle - 1) * s.perCycle()
		for _, iv := range s.Intervals[:s.Index] {
			elapsed += iv.Seconds
		}
		return elapsed + s.Intervals[s.Index].Seconds - s.Remaining
	case catalog.ModeTimer:
		return s.Initial - s.Remaining
	default:
		return 0
	}
}

// Progress is the completed fraction in [0, 1].
func (s SessionState) Progress() float64 {
	var p float64
	switch s.Mode {
	case catalog.ModeReps:
		p = float64(s.Reps) / float64(s.RepGoal)
	case catalog.ModeInfo, "":
		if s.Done {
			p = 1
		}
	default:
		total := s.TotalSeconds()
		if total > 0 {
			p = float64(s.ElapsedSeconds()) / float64(total)
		}
	}
	return min(max(p, 0), 1)
}

func (s SessionState) Label() string {
	switch s.Mode {
	case catalog.ModeInterval:
		if len(s.Intervals) == 0 {
			return "Ready"
		}
		return fmt.Sprintf("%s %ds (cycle %d of %d)", s.Intervals[s.Index].Label, s.Remaining, s.Cycle, s.Cycles)
	case catalog.ModeTimer:
		return formatClock(s.Remaining)
	case catalog.ModeReps:
		return fmt.Sprintf("%d / %d reps", s.Reps, s.RepGoal)
	default:
		if s.Done {
			return "done"
		}
		return "follow the steps at your pace"
	}
}

func (s SessionState) perCycle() int {
	total := 0
	for _, iv := range s.Intervals {
		total += iv.Seconds
	}
	return total
}

func sessionTickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return SessionTickMsg{Gen: gen} })
}

func (m Model) handleSessionKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if !m.Session.Active() {
		return m, nil, false
	}
	switch msg.String() {
	case " ":
		if m.Session.Toggle() {
			m.Status = StatusBar{Text: "session running: " + m.Session.Title}
			return m, sessionTickCmd(m.Session.gen), true
		}
		switch {
		case m.Session.Done:
			m.Status = StatusBar{Text: "session complete: " + m.Session.Title}
		case m.Session.Mode == catalog.ModeTimer || m.Session.Mode == catalog.ModeInterval:
			m.Status = StatusBar{Text: "session paused"}
		}
		return m, nil, true
	case "r":
		m.Session.Reset()
		m.Status = StatusBar{Text: "session reset"}
		return m, nil, true
	case "o":
		if m.Session.CycleOption() {
			m.Status = StatusBar{Text: "timer set to " + formatClock(m.Session.Initial)}
		}
		return m, nil, true
	case "esc":
		m.Session = SessionState{gen: m.Session.gen}
		m.Status = StatusBar{Text: "session closed"}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) onSessionTick(msg SessionTickMsg) (Model, tea.Cmd) {
	if msg.Gen != m.Session.gen || !m.Session.Running {
		return m, nil
	}
	m.Session.Tick()
	if m.Session.Done {
		m.Status = StatusBar{Text: "session complete: " + m.Session.Title}
		return m, nil
	}
	return m, sessionTickCmd(m.Session.gen)
}
