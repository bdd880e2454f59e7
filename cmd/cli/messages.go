package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/smartspace/smartspace/internal/initialization"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewMessagesCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "msg"},
		Short:   "Read and send messages",
		Long:    `Read the messages of a thread, send prompts and answer flows that wait for input.`,
	}

	cmd.AddCommand(NewMessagesListCommand(app))
	cmd.AddCommand(NewMessagesSendCommand(app))
	cmd.AddCommand(NewMessagesInputCommand(app))

	return cmd
}

func NewMessagesListCommand(app *app) *cobra.Command {
	var take, skip int

	cmd := &cobra.Command{
		Use:   "list <thread-id>",
		Short: "List the messages of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			messages, err := services.Messages.GetMessages(cmd.Context(), domain.GetMessagesParams{
				ThreadID: args[0],
				Take:     take,
				Skip:     skip,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(messages))
			for _, message := range messages {
				rows = append(rows, []string{
					message.ID,
					formatTime(message.CreatedAt),
					message.CreatedBy,
					messageSummary(message),
				})
			}

			return app.printer(cmd).Print(messages, []string{"ID", "CREATED", "BY", "CONTENT"}, rows)
		},
	}

	cmd.Flags().IntVar(&take, "take", 0, "Number of messages to return")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of messages to skip")

	return cmd
}

func messageSummary(message domain.Message) string {
	if prompt := message.Prompt(); prompt != "" {
		return "> " + truncateText(prompt, 60)
	}
	return truncateText(message.TextContent(), 60)
}

func NewMessagesSendCommand(app *app) *cobra.Command {
	var (
		workspace string
		thread    string
		files     []string
	)

	cmd := &cobra.Command{
		Use:   "send [prompt...]",
		Short: "Send a prompt and stream the reply",
		Long: `Send a prompt to a workspace and print the reply as it streams in. Without a
--thread a new thread is started. The prompt is read from stdin when no arguments are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}

			workspaceID, err := app.workspaceID(cmd, workspace)
			if err != nil {
				return err
			}

			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			references, err := uploadAttachments(cmd, services, workspaceID, thread, files)
			if err != nil {
				return err
			}

			writer := newReplyWriter(cmd.OutOrStdout(), !app.printer(cmd).structured())
			err = services.Messages.SendMessage(cmd.Context(), domain.SendMessageParams{
				WorkspaceID: workspaceID,
				ThreadID:    thread,
				Prompt:      prompt,
				FileIDs:     references,
			}, writer.Handle)
			writer.Finish()
			if err != nil {
				return err
			}

			return writer.Report(app.printer(cmd))
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace ID (defaults to default_workspace)")
	cmd.Flags().StringVarP(&thread, "thread", "t", "", "Thread to continue")
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "File to attach (repeatable)")

	return cmd
}

func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt != "" {
		return prompt, nil
	}
	if interactive() {
		return "", fmt.Errorf("a prompt is required")
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}

	prompt = strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("a prompt is required")
	}
	return prompt, nil
}

func uploadAttachments(cmd *cobra.Command, services *initialization.Services, workspaceID, threadID string, paths []string) ([]domain.FileReference, error) {
	references := make([]domain.FileReference, 0, len(paths))

	for _, path := range paths {
		info, err := uploadPath(cmd, services, workspaceID, threadID, path)
		if err != nil {
			return nil, err
		}
		references = append(references, info.Reference())
	}

	return references, nil
}

func NewMessagesInputCommand(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "input <message-id> <name> <value>",
		Short: "Answer a message that waits for input",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any = args[2]
			if asJSON {
				if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
					return fmt.Errorf("failed to parse value as json: %w", err)
				}
			}

			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			writer := newReplyWriter(cmd.OutOrStdout(), !app.printer(cmd).structured())
			err = services.Messages.AddInput(cmd.Context(), domain.AddInputParams{
				MessageID: args[0],
				Name:      args[1],
				Value:     value,
			}, writer.Handle)
			writer.Finish()
			if err != nil {
				return err
			}

			return writer.Report(app.printer(cmd))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Parse the value as JSON")

	return cmd
}

// replyWriter prints a streamed reply. The stream resends a message each
// time it grows, so only the new suffix of its text is written.
type replyWriter struct {
	mu   sync.Mutex
	out  io.Writer
	live bool

	printed  map[string]string
	latest   map[string]domain.Message
	order    []string
	current  string
	threadID string
}

func newReplyWriter(out io.Writer, live bool) *replyWriter {
	return &replyWriter{
		out:     out,
		live:    live,
		printed: make(map[string]string),
		latest:  make(map[string]domain.Message),
	}
}

func (w *replyWriter) Handle(message domain.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, seen := w.latest[message.ID]; !seen {
		w.order = append(w.order, message.ID)
	}
	w.latest[message.ID] = message
	if w.threadID == "" {
		w.threadID = message.ThreadID
	}

	if !w.live {
		return
	}

	text := message.TextContent()
	previous := w.printed[message.ID]
	if text == "" || text == previous {
		return
	}

	if w.current != message.ID {
		if w.current != "" {
			fmt.Fprintln(w.out)
		}
		w.current = message.ID
		previous = ""
		if w.printed[message.ID] != "" {
			fmt.Fprintln(w.out, mutedStyle.Render("[updated]"))
		}
	}

	if strings.HasPrefix(text, previous) {
		fmt.Fprint(w.out, text[len(previous):])
	} else {
		fmt.Fprint(w.out, "\n"+text)
	}
	w.printed[message.ID] = text
}

// Finish ends the live output line
func (w *replyWriter) Finish() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.live && w.current != "" {
		fmt.Fprintln(w.out)
		w.current = ""
	}
}

// Messages returns the final version of every streamed message in arrival order
func (w *replyWriter) Messages() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	messages := make([]domain.Message, 0, len(w.order))
	for _, id := range w.order {
		messages = append(messages, w.latest[id])
	}
	return messages
}

// Report prints the collected messages in structured modes and the thread id otherwise
func (w *replyWriter) Report(p *printer) error {
	if p.structured() {
		return p.Print(w.Messages(), nil, nil)
	}
	if w.threadID != "" {
		_, err := fmt.Fprintln(w.out, mutedStyle.Render("thread "+w.threadID))
		return err
	}
	return nil
}

func uploadPath(cmd *cobra.Command, services *initialization.Services, workspaceID, threadID, path string) (domain.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.FileInfo{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return services.Files.UploadFile(cmd.Context(), domain.UploadFileParams{
		WorkspaceID: workspaceID,
		ThreadID:    threadID,
		Name:        fileName(path),
		ContentType: contentType(path),
		Reader:      file,
	})
}
