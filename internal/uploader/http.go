// internal/uploader/http.go
// Default provider: multipart POST to the marketplace's blob endpoint.

package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// HTTPUploader posts one file per request to a blob-storage endpoint
// together with a fixed upload preset, and reads back a public URL.
// The endpoint is a black box: it either returns {"url": ...} or fails.
type HTTPUploader struct {
	endpoint    string
	preset      string
	maxFileSize int64
	client      *http.Client
}

func NewHTTPUploader(endpoint, preset string, maxFileSize int64, client *http.Client) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{
		endpoint:    endpoint,
		preset:      preset,
		maxFileSize: maxFileSize,
		client:      client,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, f File, progress func(uploaded int64)) (*Result, error) {
	if f.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if u.maxFileSize > 0 && f.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, f.Size)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("upload_preset", u.preset); err != nil {
		return nil, fmt.Errorf("failed to write preset field: %w", err)
	}

	part, err := writer.CreateFormFile("file", f.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	counted := &countingReader{r: f.Content, progress: progress}
	size, err := io.Copy(part, counted)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if u.maxFileSize > 0 && size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blob store returned status %d", resp.StatusCode)
	}

	var reply struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if reply.URL == "" {
		return nil, fmt.Errorf("blob store returned no url")
	}

	return &Result{
		URL:      reply.URL,
		Kind:     ClassifyKind(f.MIMEType),
		FileName: f.Name,
		Size:     size,
		MIMEType: f.MIMEType,
	}, nil
}
