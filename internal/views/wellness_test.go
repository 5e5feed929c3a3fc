package views

import (
	"strings"
	"testing"
)

func TestTumblingEOpensTowardRotation(t *testing.T) {
	right := strings.Split(TumblingE(0, 1), "\n")
	if len(right) != 5 || right[0] != "██████████" || right[1] != "██" {
		t.Fatalf("unexpected right-facing E:\n%s", strings.Join(right, "\n"))
	}

	down := strings.Split(TumblingE(1, 1), "\n")
	if down[0] != "██████████" {
		t.Fatalf("expected the spine on top when opening down:\n%s", strings.Join(down, "\n"))
	}
	up := strings.Split(TumblingE(3, 1), "\n")
	if up[4] != "██████████" {
		t.Fatalf("expected the spine at the bottom when opening up:\n%s", strings.Join(up, "\n"))
	}
	if TumblingE(4, 1) != TumblingE(0, 1) {
		t.Fatal("four quarter turns should be the identity")
	}
	if got := len(strings.Split(TumblingE(0, 3), "\n")); got != 15 {
		t.Fatalf("expected scale 3 to triple the height, got %d rows", got)
	}
}

func TestMoodSparklineMarksMissingDays(t *testing.T) {
	out := MoodSparkline([]int{1, 0, 5})
	if out != "▂ · █" {
		t.Fatalf("unexpected sparkline %q", out)
	}
}

func TestRenderStreakAndCheckinPanels(t *testing.T) {
	out := RenderStreakPanel(StreakPanelData{Streak: 3, Series: []int{0, 4}, Days: []string{"2025-03-09", "2025-03-10"}})
	for _, want := range []string{"3d", "2025-03-09 .. 2025-03-10", "last 7 days"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in streak panel:\n%s", want, out)
		}
	}

	out = RenderCheckinPanel(CheckinPanelData{
		Moods:        []MoodChip{{Value: 1, Label: "Strained"}, {Value: 2, Label: "Tired", Cursor: true}},
		CheckedToday: true,
		TodayLabel:   "Tired",
	})
	for _, want := range []string{"1 Strained", "2 Tired", "check-in is saved (Tired)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in check-in panel:\n%s", want, out)
		}
	}
}

func TestRenderAcuityPanel(t *testing.T) {
	out := RenderAcuityPanel(AcuityPanelData{Variant: "near", Eye: "OD", Snellen: "20/32", LogMAR: "0.20", Scale: 1, Trials: 2, Last: "32:✓"})
	for _, want := range []string{"near acuity", "eye: OD", "20/32", "logMAR 0.20", "answers: 2", "last: 32:✓"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in acuity panel:\n%s", want, out)
		}
	}
}
