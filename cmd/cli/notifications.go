package cli

import (
	"fmt"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewNotificationsCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notification", "inbox"},
		Short:   "Read notifications",
	}

	cmd.AddCommand(NewNotificationsListCommand(app))
	cmd.AddCommand(NewNotificationsReadCommand(app))
	cmd.AddCommand(NewNotificationsReadAllCommand(app))

	return cmd
}

func NewNotificationsListCommand(app *app) *cobra.Command {
	var (
		take   int
		skip   int
		unread bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			page, err := services.Notifications.GetNotifications(cmd.Context(), domain.GetNotificationsParams{
				Take:       take,
				Skip:       skip,
				UnreadOnly: unread,
			})
			if err != nil {
				return err
			}

			p := app.printer(cmd)
			if err := p.Print(page, notificationHeaders, notificationRows(page.Notifications)); err != nil {
				return err
			}
			if !p.structured() {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("%d unread of %d", page.UnreadCount, page.Total)))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&take, "take", 0, "Number of notifications to return")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of notifications to skip")
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")

	return cmd
}

var notificationHeaders = []string{"ID", "", "TITLE", "THREAD", "CREATED"}

func notificationRows(notifications []domain.Notification) [][]string {
	rows := make([][]string, 0, len(notifications))
	for _, notification := range notifications {
		marker := "•"
		if notification.IsRead() {
			marker = ""
		}
		rows = append(rows, []string{
			notification.ID,
			marker,
			truncateText(notification.Title, 60),
			notification.ThreadID,
			formatTime(notification.CreatedAt),
		})
	}
	return rows
}

func NewNotificationsReadCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			if err := services.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.printer(cmd).Success(map[string]string{"read": args[0]}, "Marked as read")
		},
	}
}

func NewNotificationsReadAllCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			if err := services.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}

			return app.printer(cmd).Success(map[string]bool{"read_all": true}, "All notifications marked as read")
		},
	}
}
