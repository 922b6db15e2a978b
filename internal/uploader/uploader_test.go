package uploader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedFile(name, mimeType, content string) File {
	return File{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}
}

func TestClassifyKind(t *testing.T) {
	cases := map[string]string{
		"image/png":       "image",
		"image/jpeg":      "image",
		"audio/mpeg":      "audio",
		"video/mp4":       "video",
		"application/pdf": "document",
		"text/plain":      "document",
		"":                "document",
	}
	for mimeType, want := range cases {
		assert.Equal(t, want, ClassifyKind(mimeType), "mime type %q", mimeType)
	}
}

func TestUploadBatchAggregatesProgress(t *testing.T) {
	mock := NewMockUploader(0)

	var percents []float64
	progress := func(fileIndex int, percent float64) {
		percents = append(percents, percent)
	}

	files := []File{
		stagedFile("a.png", "image/png", strings.Repeat("a", 100)),
		stagedFile("b.png", "image/png", strings.Repeat("b", 300)),
	}
	results := UploadBatch(context.Background(), mock, files, progress, nil)

	require.Len(t, results, 2)
	require.NotEmpty(t, percents)

	// Aggregate over the batch: monotone, capped, finishing at 100.
	last := 0.0
	for _, p := range percents {
		assert.GreaterOrEqual(t, p, last)
		assert.LessOrEqual(t, p, 100.0)
		last = p
	}
	assert.Equal(t, 100.0, percents[len(percents)-1])
}

func TestUploadBatchToleratesFailures(t *testing.T) {
	mock := NewMockUploader(0)
	mock.FailFor = map[string]error{"bad.png": errors.New("disk full")}

	var warned []string
	warn := func(fileName string, err error) {
		warned = append(warned, fileName)
		assert.ErrorContains(t, err, "disk full")
	}

	files := []File{
		stagedFile("good.png", "image/png", "abcd"),
		stagedFile("bad.png", "image/png", "efgh"),
		stagedFile("also-good.pdf", "application/pdf", "ijkl"),
	}
	results := UploadBatch(context.Background(), mock, files, nil, warn)

	require.Len(t, results, 2)
	assert.Equal(t, "good.png", results[0].FileName)
	assert.Equal(t, "also-good.pdf", results[1].FileName)
	assert.Equal(t, []string{"bad.png"}, warned)
}

func TestUploadBatchEmpty(t *testing.T) {
	mock := NewMockUploader(0)
	results := UploadBatch(context.Background(), mock, nil, nil, nil)
	assert.Empty(t, results)
}

func TestHTTPUploader(t *testing.T) {
	var gotPreset, gotFileName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFileName = header.Filename

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url": "https://cdn.example.com/abc123.png"}`))
	}))
	defer server.Close()

	u := NewHTTPUploader(server.URL, "vendor_chat", 10*1024*1024, server.Client())
	res, err := u.Upload(context.Background(), stagedFile("photo.png", "image/png", "pixels"), nil)
	require.NoError(t, err)

	assert.Equal(t, "vendor_chat", gotPreset)
	assert.Equal(t, "photo.png", gotFileName)
	assert.Equal(t, "https://cdn.example.com/abc123.png", res.URL)
	assert.Equal(t, "image", res.Kind)
	assert.Equal(t, int64(len("pixels")), res.Size)
}

func TestHTTPUploaderRejectsOversize(t *testing.T) {
	u := NewHTTPUploader("http://unused.invalid", "p", 4, nil)
	_, err := u.Upload(context.Background(), stagedFile("big.bin", "application/octet-stream", "too large"), nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestHTTPUploaderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	u := NewHTTPUploader(server.URL, "p", 0, server.Client())
	_, err := u.Upload(context.Background(), stagedFile("photo.png", "image/png", "pixels"), nil)
	assert.ErrorContains(t, err, "status 500")
}

func TestHTTPUploaderMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	u := NewHTTPUploader(server.URL, "p", 0, server.Client())
	_, err := u.Upload(context.Background(), stagedFile("photo.png", "image/png", "pixels"), nil)
	assert.ErrorContains(t, err, "no url")
}

func TestMockUploaderRejectsEmptyFile(t *testing.T) {
	mock := NewMockUploader(0)
	_, err := mock.Upload(context.Background(), File{Name: "void", Content: strings.NewReader("")}, nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
