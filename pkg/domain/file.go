package domain

import (
	"context"
	"io"
	"time"
)

type FileInfo struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	ContentType string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Size        int64     `json:"size" yaml:"size"`
	UploadedAt  time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// FileReference attaches an uploaded file to a message
type FileReference struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func (f FileInfo) Reference() FileReference {
	return FileReference{ID: f.ID, Name: f.Name}
}

type UploadFileParams struct {
	WorkspaceID string
	ThreadID    string
	Name        string
	ContentType string
	Reader      io.Reader
}

type DownloadedFile struct {
	Content     io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

type FileManager interface {
	UploadFile(ctx context.Context, params UploadFileParams) (FileInfo, error)
	GetFileInfo(ctx context.Context, fileID string) (FileInfo, error)
	DownloadFile(ctx context.Context, fileID string) (DownloadedFile, error)
}
