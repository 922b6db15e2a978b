// internal/uploader/s3.go
// S3 provider, selected when the vendor runs their own bucket.

package uploader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// S3Uploader stores attachments in an S3 bucket and returns CDN URLs.
type S3Uploader struct {
	s3Client    *s3.S3
	bucketName  string
	cdnURL      string
	maxFileSize int64
}

func NewS3Uploader(awsSession *session.Session, bucketName, cdnURL string, maxFileSize int64) *S3Uploader {
	return &S3Uploader{
		s3Client:    s3.New(awsSession),
		bucketName:  bucketName,
		cdnURL:      cdnURL,
		maxFileSize: maxFileSize,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, f File, progress func(uploaded int64)) (*Result, error) {
	if f.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if u.maxFileSize > 0 && f.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, f.Size)
	}

	// Generate unique key
	ext := filepath.Ext(f.Name)
	key := fmt.Sprintf("attachments/%s/%s%s",
		time.Now().Format("2006/01/02"),
		uuid.New().String(),
		ext,
	)

	// Read file into buffer to check size
	buf := new(bytes.Buffer)
	counted := &countingReader{r: f.Content, progress: progress}
	size, err := io.Copy(buf, counted)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if u.maxFileSize > 0 && size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	_, err = u.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String(f.MIMEType),
		ContentLength: aws.Int64(size),
		ACL:           aws.String("public-read"),
		Metadata: map[string]*string{
			"uploaded-at": aws.String(time.Now().Format(time.RFC3339)),
			"file-name":   aws.String(f.Name),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &Result{
		URL:      fmt.Sprintf("%s/%s", u.cdnURL, key),
		Kind:     ClassifyKind(f.MIMEType),
		FileName: f.Name,
		Size:     size,
		MIMEType: f.MIMEType,
	}, nil
}
