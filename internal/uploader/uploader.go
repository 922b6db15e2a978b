// internal/uploader/uploader.go
// Attachment upload pipeline: local files in, public URLs out.

package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile    = errors.New("file is empty")
)

// File is one user-selected local file staged for upload.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// Result describes one successfully uploaded file.
type Result struct {
	URL      string
	Kind     string // image, audio, video, document
	FileName string
	Size     int64
	MIMEType string
}

// Service uploads a single file to the blob store. progress, when
// non-nil, receives the cumulative number of bytes consumed.
type Service interface {
	Upload(ctx context.Context, f File, progress func(uploaded int64)) (*Result, error)
}

// ProgressFunc reports batch upload progress: the index of the file in
// flight and the fraction (0-100) of total batch bytes completed. The
// fraction is aggregated over the whole batch, so it never regresses
// between files.
type ProgressFunc func(fileIndex int, percent float64)

// WarnFunc surfaces a per-file upload failure to the user.
type WarnFunc func(fileName string, err error)

// ClassifyKind derives the coarse attachment kind from the declared
// MIME type's top-level part.
func ClassifyKind(mimeType string) string {
	switch strings.SplitN(mimeType, "/", 2)[0] {
	case "image":
		return "image"
	case "audio":
		return "audio"
	case "video":
		return "video"
	default:
		return "document"
	}
}

// UploadBatch uploads files one at a time. A failed file is reported
// through warn and contributes no result; the rest of the batch still
// proceeds, so a send can legitimately complete with fewer attachments
// than were selected.
func UploadBatch(ctx context.Context, svc Service, files []File, progress ProgressFunc, warn WarnFunc) []*Result {
	var totalBytes int64
	for _, f := range files {
		totalBytes += f.Size
	}

	var (
		results   []*Result
		doneBytes int64
	)

	for i, f := range files {
		i, base := i, doneBytes

		perFile := func(uploaded int64) {
			if progress != nil && totalBytes > 0 {
				percent := float64(base+uploaded) / float64(totalBytes) * 100
				if percent > 100 {
					percent = 100
				}
				progress(i, percent)
			}
		}

		res, err := svc.Upload(ctx, f, perFile)
		doneBytes += f.Size
		if err != nil {
			if warn != nil {
				warn(f.Name, fmt.Errorf("upload failed: %w", err))
			}
			continue
		}

		if progress != nil && totalBytes > 0 {
			progress(i, float64(doneBytes)/float64(totalBytes)*100)
		}
		results = append(results, res)
	}

	return results
}

// countingReader feeds cumulative read counts to a callback.
type countingReader struct {
	r        io.Reader
	n        int64
	progress func(uploaded int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.progress != nil {
			c.progress(c.n)
		}
	}
	return n, err
}
