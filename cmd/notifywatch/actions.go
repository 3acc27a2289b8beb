package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracepanic/compyle/pkg/notifyclient"
)

var (
	listTab  string
	listPage int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of notifications",
	RunE: func(cmd *cobra.Command, _ []string) error {
		api := newAPI(newLogger())
		res, err := api.List(cmd.Context())
		if err != nil {
			return err
		}
		state := notifyclient.NewState()
		state.Replace(res.Notifications)
		renderFull(cmd.OutOrStdout(), state.Full(notifyclient.Tab(listTab), listPage))
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), func(ctx context.Context, c *notifyclient.Commands) error {
			return c.MarkRead(ctx, args[0])
		})
	},
}

var unreadCmd = &cobra.Command{
	Use:   "unread <id>",
	Short: "Mark a notification as unread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), func(ctx context.Context, c *notifyclient.Commands) error {
			return c.MarkUnread(ctx, args[0])
		})
	},
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCommand(cmd.Context(), func(ctx context.Context, c *notifyclient.Commands) error {
			return c.MarkAllRead(ctx)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a notification",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCommand(cmd.Context(), func(ctx context.Context, c *notifyclient.Commands) error {
			return c.Delete(ctx, args[0])
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listTab, "tab", string(notifyclient.TabUnread), "unread or read")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
}
