package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/smartspace/smartspace/internal/initialization"
	"github.com/smartspace/smartspace/internal/realtime"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewWatchCommand(app *app) *cobra.Command {
	var workspaces []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live thread, comment and notification updates",
		Long: `Connect to the realtime hub and print updates as they happen. Without --workspace
the default workspace is watched, or every workspace when no default is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ids, err := watchedWorkspaces(ctx, services, workspaces)
			if err != nil {
				return err
			}

			return runWatch(ctx, cmd, app, services, ids)
		},
	}

	cmd.Flags().StringSliceVarP(&workspaces, "workspace", "w", nil, "Workspace to watch (repeatable)")

	return cmd
}

func watchedWorkspaces(ctx context.Context, services *initialization.Services, flags []string) ([]string, error) {
	if len(flags) > 0 {
		return flags, nil
	}
	if services.Config.DefaultWorkspace != "" {
		return []string{services.Config.DefaultWorkspace}, nil
	}

	workspaces, err := services.Workspaces.GetWorkspaces(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(workspaces))
	for _, workspace := range workspaces {
		ids = append(ids, workspace.ID)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no workspaces to watch")
	}

	return ids, nil
}

func runWatch(ctx context.Context, cmd *cobra.Command, app *app, services *initialization.Services, workspaceIDs []string) error {
	logger := log.Logger.With().Str("component", "watch").Logger()
	events := &eventPrinter{printer: app.printer(cmd)}

	hub := services.NewHub(logger)
	hub.OnReconnecting(func(err error) {
		logger.Warn().Err(err).Msg("Connection lost, reconnecting")
	})
	hub.OnReconnected(func() {
		logger.Info().Msg("Reconnected")
	})

	var closeErr error
	hub.OnClosed(func(err error) {
		closeErr = err
	})

	bridge := services.NewBridge(hub, events.handlers(), logger)
	defer bridge.Close()

	if err := hub.Start(ctx); err != nil {
		return err
	}
	defer hub.Stop()

	for _, workspaceID := range workspaceIDs {
		if err := bridge.SubscribeToGroup(ctx, workspaceID); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf(
		"Watching %d workspace(s). Press Ctrl+C to stop.", len(workspaceIDs))))

	select {
	case <-ctx.Done():
		return nil
	case <-hub.Done():
		if closeErr != nil {
			return fmt.Errorf("realtime connection closed: %w", closeErr)
		}
		return nil
	}
}

// watchEvent is the structured form of one hub update
type watchEvent struct {
	Event        string                `json:"event" yaml:"event"`
	Thread       *domain.MessageThread `json:"thread,omitempty" yaml:"thread,omitempty"`
	ThreadID     string                `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
	Comment      *domain.Comment       `json:"comment,omitempty" yaml:"comment,omitempty"`
	Notification *domain.Notification  `json:"notification,omitempty" yaml:"notification,omitempty"`
}

type eventPrinter struct {
	mu      sync.Mutex
	printer *printer
}

func (e *eventPrinter) handlers() realtime.EventHandlers {
	return realtime.EventHandlers{
		OnThreadUpdate: func(thread domain.MessageThread) {
			e.print(watchEvent{Event: "thread_updated", Thread: &thread},
				fmt.Sprintf("thread   %s %q updated", thread.ID, thread.Name))
		},
		OnThreadDeleted: func(threadID string) {
			e.print(watchEvent{Event: "thread_deleted", ThreadID: threadID},
				fmt.Sprintf("thread   %s deleted", threadID))
		},
		OnCommentUpdate: func(comment domain.Comment) {
			e.print(watchEvent{Event: "comment", Comment: &comment},
				fmt.Sprintf("comment  %s %s: %s", comment.ThreadID, comment.CreatedBy, truncateText(comment.Content, 60)))
		},
		OnNotification: func(notification domain.Notification) {
			e.print(watchEvent{Event: "notification", Notification: &notification},
				fmt.Sprintf("notice   %s", notification.Title))
		},
	}
}

func (e *eventPrinter) print(event watchEvent, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.printer.PrintLine(event, text); err != nil {
		log.Warn().Err(err).Msg("Failed to print event")
	}
}
