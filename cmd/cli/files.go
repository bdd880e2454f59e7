package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewFilesCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Upload and download files",
	}

	cmd.AddCommand(NewFilesUploadCommand(app))
	cmd.AddCommand(NewFilesInfoCommand(app))
	cmd.AddCommand(NewFilesDownloadCommand(app))

	return cmd
}

var fileHeaders = []string{"ID", "NAME", "TYPE", "SIZE", "UPLOADED"}

func fileRows(files []domain.FileInfo) [][]string {
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		rows = append(rows, []string{
			file.ID,
			file.Name,
			file.ContentType,
			formatSize(file.Size),
			formatTime(file.UploadedAt),
		})
	}
	return rows
}

func NewFilesUploadCommand(app *app) *cobra.Command {
	var workspace, thread string

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files to a workspace or thread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspaceID, err := app.workspaceID(cmd, workspace)
			if err != nil {
				return err
			}

			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			uploaded := make([]domain.FileInfo, 0, len(args))
			for _, path := range args {
				info, err := uploadPath(cmd, services, workspaceID, thread, path)
				if err != nil {
					return err
				}
				uploaded = append(uploaded, info)
			}

			return app.printer(cmd).Print(uploaded, fileHeaders, fileRows(uploaded))
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace ID (defaults to default_workspace)")
	cmd.Flags().StringVarP(&thread, "thread", "t", "", "Attach the files to a thread")

	return cmd
}

func NewFilesInfoCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file-id>",
		Short: "Show file details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			info, err := services.Files.GetFileInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.printer(cmd).Print(info, fileHeaders, fileRows([]domain.FileInfo{info}))
		},
	}
}

func NewFilesDownloadCommand(app *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file",
		Long:  `Download a file into the current directory under its own name, or to --out. Use --out - for stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			download, err := services.Files.DownloadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer download.Content.Close()

			if output == "-" {
				_, err := io.Copy(cmd.OutOrStdout(), download.Content)
				return err
			}

			target := output
			if target == "" {
				target = fileName(download.Name)
				if target == "" || target == "." {
					target = args[0]
				}
			}

			written, err := writeFile(target, download.Content)
			if err != nil {
				return err
			}

			return app.printer(cmd).Success(
				map[string]interface{}{"path": target, "bytes": written},
				fmt.Sprintf("Saved %s (%s)", target, formatSize(written)),
			)
		},
	}

	cmd.Flags().StringVar(&output, "out", "", "Destination path")

	return cmd
}

func writeFile(path string, content io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	written, err := io.Copy(file, content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return written, nil
}

// fileName strips any directory so server names cannot escape the target dir
func fileName(path string) string {
	return filepath.Base(filepath.Clean(path))
}

func contentType(path string) string {
	if detected := mime.TypeByExtension(filepath.Ext(path)); detected != "" {
		return detected
	}
	return "application/octet-stream"
}
