package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/views"
)

func (c *cli) exercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercises",
		Aliases: []string{"ex"},
		Short:   "Browse the eye-exercise catalog",
	}

	var q catalog.Query
	list := &cobra.Command{
		Use:   "list",
		Short: "List exercises, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			items := cat.Find(q)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tLEVEL\tLENGTH")
			for _, e := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.Category, e.Level, e.Length())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no exercises match (categories: %s)\n", strings.Join(cat.Categories(), ", "))
			}
			return nil
		},
	}
	list.Flags().StringVarP(&q.Text, "query", "q", "", "Match title or description")
	list.Flags().StringVar(&q.Category, "category", "", "Filter by category")
	list.Flags().StringVar(&q.Level, "level", "", "Filter by level")

	var raw bool
	var width int
	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one exercise with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			e, err := cat.ByID(args[0])
			if err != nil {
				return err
			}
			md := catalog.Markdown(e)
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderMarkdown(md, width))
			return nil
		},
	}
	show.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	show.Flags().IntVar(&width, "width", 80, "Wrap width for rendered output")

	cmd.AddCommand(list, show)
	return cmd
}
