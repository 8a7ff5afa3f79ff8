package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
)

const testBaseURL = "https://storage.googleapis.com/diary-test"

// MockStore records what the pipeline sends to object storage.
type MockStore struct {
	mock.Mock

	tempDir     string
	uploaded    map[string][]byte
	tempPresent map[string]bool
}

func newMockStore(tempDir string) *MockStore {
	return &MockStore{
		tempDir:     tempDir,
		uploaded:    map[string][]byte{},
		tempPresent: map[string]bool{},
	}
}

func (m *MockStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, _ := io.ReadAll(r)
	m.uploaded[key] = data
	_, statErr := os.Stat(filepath.Join(m.tempDir, key))
	m.tempPresent[key] = statErr == nil
	args := m.Called(ctx, key, contentType)
	return args.Error(0)
}

func (m *MockStore) MakePublic(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) PublicBaseURL() string { return testBaseURL }

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, a *Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	return buf.Bytes()
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func tempDirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
