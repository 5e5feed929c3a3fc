package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/visionary/internal/model"
)

func (c *cli) previewCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the saved bedtime reminder and its next occurrences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rule := a.Store.Load(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reminder: %s\n", model.FormatPreview(rule))
			fmt.Fprintf(out, "schedule: %s\n", model.Summary(rule))
			fmt.Fprintf(out, "zone:     %s\n", rule.TZ)
			for i, at := range upcoming(rule, time.Now(), count) {
				fmt.Fprintf(out, "%2d. %s %s\n", i+1, at.In(model.Location(rule)).Format("Mon Jan 2"), model.FormatInstant(rule, at))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of upcoming occurrences to list")
	return cmd
}

// upcoming lists up to n occurrences strictly after now.
func upcoming(rule model.SleepReminder, now time.Time, n int) []time.Time {
	var out []time.Time
	from := now
	for len(out) < n {
		next, ok := model.NextOccurrence(rule, from)
		if !ok {
			break
		}
		out = append(out, next)
		from = next
	}
	return out
}
