package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/results"
)

func (c *cli) resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Record and export vision test results",
	}

	var filter results.Filter
	addFilterFlags := func(fc *cobra.Command) {
		fc.Flags().StringVar(&filter.Category, "category", "all", "score, self, accessory or all")
		fc.Flags().StringVar(&filter.Eye, "eye", "all", "OD, OS, OU or all")
		fc.Flags().StringVarP(&filter.Text, "query", "q", "", "Match label, value or notes")
	}

	var in results.Input
	var eye string
	var distance float64
	add := &cobra.Command{
		Use:   "add [test-id] [value]",
		Short: "Record one result",
		Long:  "Record one result. Known test ids are listed by \"visionary results tests\".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			in.TestID, in.Value = args[0], args[1]
			in.Eye = model.Eye(eye)
			if cmd.Flags().Changed("distance") {
				d := distance
				in.DistanceCM = &d
			}
			r, err := a.Results.Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (%s) %s %s\n", r.Label, r.Eye, r.Value, r.Unit)
			return nil
		},
	}
	add.Flags().StringVar(&eye, "eye", string(model.EyeBoth), "OD, OS or OU")
	add.Flags().StringVar(&in.Unit, "unit", "", "Unit of the value")
	add.Flags().StringVar(&in.Notes, "notes", "", "Free-form notes")
	add.Flags().Float64Var(&distance, "distance", 0, "Test distance in cm")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.Results.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTEST\tEYE\tVALUE\tNOTES")
			for _, r := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\n",
					r.RecordedAt.Local().Format("2006-01-02 15:04"), r.Label, r.Eye, r.Value, r.Unit, r.Notes)
			}
			return tw.Flush()
		},
	}
	addFilterFlags(list)

	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export results as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := a.Results.ExportCSV(cmd.Context(), w, filter)
			if err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d results to %s\n", n, outPath)
			}
			return nil
		},
	}
	addFilterFlags(export)
	export.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to delete results without --yes")
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Results.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d results\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")

	tests := &cobra.Command{
		Use:   "tests",
		Short: "List the known test ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tLABEL")
			for _, t := range results.Tests {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Category, t.Label)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list, export, clearCmd, tests)
	return cmd
}
