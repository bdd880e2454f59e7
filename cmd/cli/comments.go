package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

const mentionSearchSize = 5

func NewCommentsCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"comment"},
		Short:   "Read and add thread comments",
	}

	cmd.AddCommand(NewCommentsListCommand(app))
	cmd.AddCommand(NewCommentsAddCommand(app))

	return cmd
}

func NewCommentsListCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <thread-id>",
		Short: "List the comments of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			comments, err := services.Comments.GetComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(comments))
			for _, comment := range comments {
				rows = append(rows, []string{
					formatTime(comment.CreatedAt),
					comment.CreatedBy,
					truncateText(comment.Content, 60),
					mentionNames(comment.MentionedUsers),
				})
			}

			return app.printer(cmd).Print(comments, []string{"CREATED", "BY", "COMMENT", "MENTIONS"}, rows)
		},
	}
}

func mentionNames(users []domain.MentionedUser) string {
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, "@"+user.DisplayName)
	}
	return strings.Join(names, ", ")
}

func NewCommentsAddCommand(app *app) *cobra.Command {
	var mentions []string

	cmd := &cobra.Command{
		Use:   "add <thread-id> <comment>",
		Short: "Comment on a thread",
		Long: `Add a comment to a thread. Each --mention is looked up in the directory by
name or mail prefix; ambiguous matches are offered for selection.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			mentioned, err := resolveMentions(cmd.Context(), services.Directory, mentions, chooseUser)
			if err != nil {
				return err
			}

			comment, err := services.Comments.AddComment(cmd.Context(), domain.AddCommentParams{
				ThreadID:       args[0],
				Content:        args[1],
				MentionedUsers: mentioned,
			})
			if err != nil {
				return err
			}

			return app.printer(cmd).Success(comment, "Comment added")
		},
	}

	cmd.Flags().StringSliceVarP(&mentions, "mention", "m", nil, "User to mention by name or mail (repeatable)")

	return cmd
}

type userSearcher interface {
	SearchUsers(ctx context.Context, query string, top int32) ([]domain.User, error)
}

// resolveMentions maps each query to one directory user. An exact match on
// mail, principal name or display name wins over a prefix match; otherwise
// choose picks among several candidates.
func resolveMentions(ctx context.Context, directory userSearcher, queries []string, choose func(string, []domain.User) (domain.User, error)) ([]domain.MentionedUser, error) {
	mentioned := make([]domain.MentionedUser, 0, len(queries))
	seen := make(map[string]bool)

	for _, query := range queries {
		query = strings.TrimPrefix(strings.TrimSpace(query), "@")
		if query == "" {
			continue
		}

		users, err := directory.SearchUsers(ctx, query, mentionSearchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %q: %w", query, err)
		}

		user, err := pickUser(query, users, choose)
		if err != nil {
			return nil, err
		}

		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		mentioned = append(mentioned, user.Mention())
	}

	return mentioned, nil
}

func pickUser(query string, users []domain.User, choose func(string, []domain.User) (domain.User, error)) (domain.User, error) {
	switch len(users) {
	case 0:
		return domain.User{}, fmt.Errorf("no user matches %q", query)
	case 1:
		return users[0], nil
	}

	for _, user := range users {
		if strings.EqualFold(user.Mail, query) ||
			strings.EqualFold(user.UserPrincipalName, query) ||
			strings.EqualFold(user.DisplayName, query) {
			return user, nil
		}
	}

	return choose(query, users)
}
