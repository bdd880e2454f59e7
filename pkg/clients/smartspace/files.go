package smartspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
)

// UploadFiles uploads files into a workspace or thread scope
func (c *Client) UploadFiles(ctx context.Context, req *UploadFilesRequest) ([]FileInfo, error) {
	if req == nil || len(req.Files) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	if req.Scope.WorkspaceID == "" && req.Scope.ThreadID == "" {
		return nil, fmt.Errorf("file scope requires a workspace ID or thread ID")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if req.Scope.WorkspaceID != "" {
		if err := writer.WriteField("workspaceId", req.Scope.WorkspaceID); err != nil {
			return nil, fmt.Errorf("failed to write workspace field: %w", err)
		}
	}
	if req.Scope.ThreadID != "" {
		if err := writer.WriteField("threadId", req.Scope.ThreadID); err != nil {
			return nil, fmt.Errorf("failed to write thread field: %w", err)
		}
	}

	for _, file := range req.Files {
		if file.Name == "" || file.Reader == nil {
			return nil, fmt.Errorf("file name and reader are required")
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
			"name":     "files",
			"filename": file.Name,
		}))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create part for %s: %w", file.Name, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	resp, err := c.doRawRequest(ctx, c.streamClient, "POST", "/files", body.Bytes(), map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload files: %w", err)
	}

	var result []FileInfo
	if err := c.handleResponse(resp, "[]"+schemaFileInfo, &result); err != nil {
		return nil, fmt.Errorf("failed to process upload files response: %w", err)
	}

	return result, nil
}

// GetFileInfo gets metadata about a file without downloading it
func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	if err := requireID("file ID", fileID); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", "/files/"+url.PathEscape(fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	var result FileInfo
	if err := c.handleResponse(resp, schemaFileInfo, &result); err != nil {
		return nil, fmt.Errorf("failed to process file info response: %w", err)
	}

	return &result, nil
}

// DownloadFile opens the content of a file. The caller must close Content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*DownloadFileResponse, error) {
	if err := requireID("file ID", fileID); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/files/%s/download", url.PathEscape(fileID))
	resp, err := c.doRawRequest(ctx, c.streamClient, "GET", path, nil, map[string]string{
		"Accept": "*/*",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, parseErrorResponse(resp, body)
	}

	contentLength, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)

	fileName := ""
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			fileName = params["filename"]
		}
	}

	return &DownloadFileResponse{
		Content:       resp.Body,
		ContentLength: contentLength,
		ContentType:   resp.Header.Get("Content-Type"),
		FileName:      fileName,
	}, nil
}
