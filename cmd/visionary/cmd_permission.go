package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/visionary/internal/notify"
)

func (c *cli) permissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Inspect or change the notification permission",
		Long: `Notifications need permission before any reminder is delivered. The
first save of an enabled reminder asks for it; a denial sticks until it is
granted or reset here.`,
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the current permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), a.Permissions.State(cmd.Context()))
			return nil
		},
	}

	set := func(use, short string, perm notify.Permission) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.Permissions.Set(cmd.Context(), perm); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "notification permission: %s\n", perm)
				return nil
			},
		}
	}

	cmd.AddCommand(
		status,
		set("grant", "Allow reminder notifications", notify.PermissionGranted),
		set("deny", "Block reminder notifications", notify.PermissionDenied),
		set("reset", "Forget the decision so the next save asks again", notify.PermissionDefault),
	)
	return cmd
}
