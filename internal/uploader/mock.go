// internal/uploader/mock.go

package uploader

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockUploader is the development provider: it consumes the file and
// hands back a fake URL. Also used as a test double.
type MockUploader struct {
	mu          sync.Mutex
	maxFileSize int64
	uploads     []File

	// FailFor makes uploads of the named files fail.
	FailFor map[string]error
}

func NewMockUploader(maxFileSize int64) *MockUploader {
	return &MockUploader{maxFileSize: maxFileSize}
}

func (u *MockUploader) Upload(ctx context.Context, f File, progress func(uploaded int64)) (*Result, error) {
	if f.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if u.maxFileSize > 0 && f.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, f.Size)
	}

	u.mu.Lock()
	err := u.FailFor[f.Name]
	u.mu.Unlock()
	if err != nil {
		return nil, err
	}

	counted := &countingReader{r: f.Content, progress: progress}
	size, err := io.Copy(io.Discard, counted)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	u.mu.Lock()
	u.uploads = append(u.uploads, f)
	u.mu.Unlock()

	return &Result{
		URL:      fmt.Sprintf("mock://uploads/%s", f.Name),
		Kind:     ClassifyKind(f.MIMEType),
		FileName: f.Name,
		Size:     size,
		MIMEType: f.MIMEType,
	}, nil
}

// Uploaded returns the files consumed so far.
func (u *MockUploader) Uploaded() []File {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]File, len(u.uploads))
	copy(out, u.uploads)
	return out
}
