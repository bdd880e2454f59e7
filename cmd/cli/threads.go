package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/utils/pagination"
	"github.com/spf13/cobra"
)

func NewThreadsCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "threads",
		Aliases: []string{"thread"},
		Short:   "Manage message threads",
		Long:    `List, inspect, rename, favorite and delete the message threads of a workspace.`,
	}

	cmd.AddCommand(NewThreadsListCommand(app))
	cmd.AddCommand(NewThreadsGetCommand(app))
	cmd.AddCommand(NewThreadsRenameCommand(app))
	cmd.AddCommand(NewThreadsFavoriteCommand(app))
	cmd.AddCommand(NewThreadsDeleteCommand(app))

	return cmd
}

func NewThreadsListCommand(app *app) *cobra.Command {
	var (
		workspace string
		take      int
		skip      int
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the threads of a workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workspaceID, err := app.workspaceID(cmd, workspace)
			if err != nil {
				return err
			}

			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			var page domain.ThreadPage
			if all {
				page, err = allThreads(cmd.Context(), services.Threads, workspaceID)
			} else {
				page, err = services.Threads.GetThreads(cmd.Context(), domain.GetThreadsParams{
					WorkspaceID: workspaceID,
					Take:        take,
					Skip:        skip,
				})
			}
			if err != nil {
				return err
			}

			if err := app.printer(cmd).Print(page, threadHeaders, threadRows(page.Threads)); err != nil {
				return err
			}
			if page.HasMore && !app.printer(cmd).structured() {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf(
					"Showing %d of %d threads; use --skip %d for more", len(page.Threads), page.Total, skip+len(page.Threads))))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace ID (defaults to default_workspace)")
	cmd.Flags().IntVar(&take, "take", 0, "Number of threads to return")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of threads to skip")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")

	return cmd
}

func allThreads(ctx context.Context, threads domain.ThreadManager, workspaceID string) (domain.ThreadPage, error) {
	fetch := func(ctx context.Context, params pagination.Params) ([]domain.MessageThread, int, error) {
		page, err := threads.GetThreads(ctx, domain.GetThreadsParams{
			WorkspaceID: workspaceID,
			Take:        params.Take,
			Skip:        params.Skip,
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Threads, page.Total, nil
	}

	collected, err := pagination.CollectAll(ctx, pagination.NewDefaultOffsetHandler(), fetch, 0)
	if err != nil {
		return domain.ThreadPage{}, err
	}

	return domain.ThreadPage{Threads: collected, Total: len(collected)}, nil
}

var threadHeaders = []string{"ID", "NAME", "MESSAGES", "FAVORITE", "UPDATED"}

func threadRows(threads []domain.MessageThread) [][]string {
	rows := make([][]string, 0, len(threads))
	for _, thread := range threads {
		name := truncateText(thread.Name, 48)
		if thread.IsFlowRunning {
			name += " " + noticeStyle.Render("(running)")
		}
		rows = append(rows, []string{
			thread.ID,
			name,
			strconv.Itoa(thread.TotalMessages),
			formatBool(thread.Favorited),
			formatTime(thread.LastUpdatedAt),
		})
	}
	return rows
}

func threadDetailRows(thread domain.MessageThread) [][]string {
	return keyValueRows(
		"ID", thread.ID,
		"Name", thread.Name,
		"Workspace", thread.WorkspaceID,
		"Messages", strconv.Itoa(thread.TotalMessages),
		"Favorite", formatBool(thread.Favorited),
		"Flow running", formatBool(thread.IsFlowRunning),
		"Created", formatTime(thread.CreatedAt),
		"Created by", thread.CreatedBy,
		"Updated", formatTime(thread.LastUpdatedAt),
	)
}

func NewThreadsGetCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <thread-id>",
		Short: "Show a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			thread, err := services.Threads.GetThread(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.printer(cmd).Print(thread, []string{"FIELD", "VALUE"}, threadDetailRows(thread))
		},
	}
}

func NewThreadsRenameCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <thread-id> <name>",
		Short: "Rename a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			thread, err := services.Threads.RenameThread(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			return app.printer(cmd).Success(thread, fmt.Sprintf("Renamed thread to %q", thread.Name))
		},
	}
}

func NewThreadsFavoriteCommand(app *app) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "favorite <thread-id>",
		Short: "Mark a thread as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			thread, err := services.Threads.SetFavorited(cmd.Context(), args[0], !remove)
			if err != nil {
				return err
			}

			message := "Added to favorites"
			if !thread.Favorited {
				message = "Removed from favorites"
			}
			return app.printer(cmd).Success(thread, message)
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the thread from favorites")

	return cmd
}

func NewThreadsDeleteCommand(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <thread-id>",
		Short: "Delete a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, err := confirm(fmt.Sprintf("Delete thread %s?", args[0]), yes)
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}

			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			if err := services.Threads.DeleteThread(cmd.Context(), args[0]); err != nil {
				return err
			}

			return app.printer(cmd).Success(map[string]string{"deleted": args[0]}, "Thread deleted")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
