package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

type fileManager struct {
	client smartspace.ClientInterface
}

type FileManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewFileManager(deps FileManagerDependencies) domain.FileManager {
	return &fileManager{
		client: deps.Client,
	}
}

// UploadFile uploads one file into a workspace or thread scope
func (m *fileManager) UploadFile(ctx context.Context, params domain.UploadFileParams) (domain.FileInfo, error) {
	files, err := m.client.UploadFiles(ctx, &smartspace.UploadFilesRequest{
		Scope: smartspace.FileScope{
			WorkspaceID: params.WorkspaceID,
			ThreadID:    params.ThreadID,
		},
		Files: []smartspace.UploadFile{
			{Name: params.Name, ContentType: params.ContentType, Reader: params.Reader},
		},
	})
	if err != nil {
		return domain.FileInfo{}, fmt.Errorf("failed to upload file: %w", err)
	}

	if len(files) == 0 {
		return domain.FileInfo{}, fmt.Errorf("upload of %s returned no file", params.Name)
	}

	return mappers.SmartSpaceFileInfoToDomain(files[0]), nil
}

func (m *fileManager) GetFileInfo(ctx context.Context, fileID string) (domain.FileInfo, error) {
	info, err := m.client.GetFileInfo(ctx, fileID)
	if err != nil {
		return domain.FileInfo{}, fmt.Errorf("failed to get file info from API: %w", err)
	}

	return mappers.SmartSpaceFileInfoToDomain(*info), nil
}

// DownloadFile opens a file's content. The caller must close Content.
func (m *fileManager) DownloadFile(ctx context.Context, fileID string) (domain.DownloadedFile, error) {
	download, err := m.client.DownloadFile(ctx, fileID)
	if err != nil {
		return domain.DownloadedFile{}, fmt.Errorf("failed to download file: %w", err)
	}

	return domain.DownloadedFile{
		Content:     download.Content,
		Name:        download.FileName,
		ContentType: download.ContentType,
		Size:        download.ContentLength,
	}, nil
}
