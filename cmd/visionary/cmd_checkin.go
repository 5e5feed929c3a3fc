package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/visionary/internal/checkins"
	"github.com/sandeepkv93/visionary/internal/views"
)

func (c *cli) checkinCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "checkin [mood]",
		Short: "Record how your eyes feel today (1-5 or a mood name)",
		Long: `Record today's eye-comfort check-in. Mood is 1 (Strained) to 5 (Great),
or the mood name. Checking in again on the same day replaces the entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mood, err := parseMood(args[0])
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.Checkins.Add(cmd.Context(), mood, note)
			if err != nil {
				return err
			}
			streak, err := a.Checkins.Streak(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked in %s: %s (streak %dd)\n", entry.Day, checkins.MoodLabel(entry.Mood), streak)
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the streak and the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sum, err := a.Checkins.Summary(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "streak: %dd\n", sum.Streak)
			if sum.CheckedToday {
				fmt.Fprintf(out, "today:  %s\n", checkins.MoodLabel(sum.Today.Mood))
			} else {
				fmt.Fprintln(out, "today:  not checked in")
			}

			series := make([]int, 0, len(sum.Last7))
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DAY\tMOOD")
			for _, d := range sum.Last7 {
				series = append(series, d.Mood)
				label := checkins.MoodLabel(d.Mood)
				if label == "" {
					label = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\n", d.Day, label)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, views.MoodSparkline(series))
			return nil
		},
	}

	cmd.AddCommand(status)
	return cmd
}

func parseMood(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if checkins.MoodLabel(n) == "" {
			return 0, fmt.Errorf("%w: got %d", checkins.ErrInvalidMood, n)
		}
		return n, nil
	}
	for _, m := range checkins.Moods {
		if strings.EqualFold(m.Label, raw) {
			return m.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mood %q", checkins.ErrInvalidMood, raw)
}
