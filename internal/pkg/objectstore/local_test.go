package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/config"
	"daylog/internal/pkg/logger"
)

func TestLocalStore_PutAndMakePublic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocal(dir, "/static/uploads")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "ABC.png", strings.NewReader("pixels"), "image/png"))
	require.NoError(t, s.MakePublic(ctx, "ABC.png"))

	data, err := os.ReadFile(filepath.Join(dir, "ABC.png"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	info, err := os.Stat(filepath.Join(dir, "ABC.png"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	assert.Equal(t, "/static/uploads", s.PublicBaseURL())
}

func TestLocalStore_RejectsPathKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/static")
	require.NoError(t, err)

	for _, key := range []string{"../escape.png", "a/b.png", ".."} {
		assert.Error(t, s.Put(context.Background(), key, strings.NewReader("x"), ""), key)
	}
}

func TestLocalStore_CancelledContext(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "/static")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "x.png", strings.NewReader("x"), ""), context.Canceled)
}

func TestNew_Local(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{
		Mode:           config.StorageModeLocal,
		LocalDir:       t.TempDir(),
		LocalURLPrefix: "/files",
	}, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "/files", s.PublicBaseURL())

	_, err = New(context.Background(), config.StorageConfig{Mode: "ftp"}, logger.NewNop())
	assert.Error(t, err)
}
