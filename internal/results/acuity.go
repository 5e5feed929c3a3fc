package results

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// SnellenLadder holds the Snellen denominators from largest to smallest
// optotype.
var SnellenLadder = []float64{200, 160, 125, 100, 80, 63, 50, 40, 32, 25, 20, 16, 12.5, 10}

// StaircaseStart is the ladder index of the first line shown (20/32).
const StaircaseStart = 8

// Rotation is the direction the open side of the E points to.
type Rotation int

const (
	RotRight Rotation = iota
	RotDown
	RotLeft
	RotUp
)

func (r Rotation) String() string {
	switch r {
	case RotRight:
		return "right"
	case RotDown:
		return "down"
	case RotLeft:
		return "left"
	case RotUp:
		return "up"
	default:
		return "unknown"
	}
}

// RandomRotation picks the next orientation uniformly.
func RandomRotation() Rotation {
	return Rotation(rand.IntN(4))
}

// Staircase is a 2-up/1-down acuity ladder: two correct answers in a row
// move one line smaller, any miss moves one line larger.
type Staircase struct {
	idx     int
	streak  int
	history []string
}

func NewStaircase() *Staircase {
	return &Staircase{idx: StaircaseStart}
}

// Judge records one answer and moves along the ladder.
func (s *Staircase) Judge(correct bool) {
	mark := "✗"
	if correct {
		mark = "✓"
	}
	s.history = append(s.history, formatDenominator(s.Denominator())+":"+mark)
	if !correct {
		s.idx = max(s.idx-1, 0)
		s.streak = 0
		return
	}
	s.streak++
	if s.streak >= 2 {
		s.idx = min(s.idx+1, len(SnellenLadder)-1)
		s.streak = 0
	}
}

func (s *Staircase) Index() int { return s.idx }

func (s *Staircase) Denominator() float64 { return SnellenLadder[s.idx] }

func (s *Staircase) Trials() int { return len(s.history) }

// Last is the most recent answer, e.g. "32:✓".
func (s *Staircase) Last() string {
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1]
}

// Snellen is the current line, e.g. "20/32".
func (s *Staircase) Snellen() string {
	return "20/" + formatDenominator(s.Denominator())
}

func (s *Staircase) LogMAR() float64 {
	return math.Log10(s.Denominator() / 20)
}

// AcuityResult is the value, unit and notes a finished run is recorded with.
type AcuityResult struct {
	Value string
	Unit  string
	Notes string
}

func (s *Staircase) Result() AcuityResult {
	return AcuityResult{
		Value: s.Snellen(),
		Unit:  fmt.Sprintf("logMAR %.2f", s.LogMAR()),
		Notes: strings.Join(s.history, " • "),
	}
}

// Input turns the current state into a results Input for testID.
func (s *Staircase) Input(testID string) Input {
	r := s.Result()
	return Input{TestID: testID, Value: r.Value, Unit: r.Unit, Notes: r.Notes}
}

func formatDenominator(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
