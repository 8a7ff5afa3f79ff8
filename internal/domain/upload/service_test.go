package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"daylog/internal/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *MockStore, *MockRepository, string) {
	t.Helper()
	tempDir := t.TempDir()
	store := newMockStore(tempDir)
	repo := new(MockRepository)
	svc := NewService(repo, store, logger.NewNop(), Options{
		TempDir:       tempDir,
		UploadTimeout: time.Second,
	})
	return svc, store, repo, tempDir
}

func TestService_Ingest_Success(t *testing.T) {
	svc, store, _, tempDir := newTestService(t)
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 123456000, time.UTC)
	svc.now = func() time.Time { return fixed }

	raw := encodePNG(t, 12, 7)
	store.On("Put", mock.Anything, mock.AnythingOfType("string"), "image/png").Return(nil).Once()
	store.On("MakePublic", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	asset, err := svc.Ingest(context.Background(), dataURL("image/png", raw))
	require.NoError(t, err)

	assert.NotEmpty(t, asset.ID)
	assert.Equal(t, testBaseURL, asset.BaseURL)
	assert.Equal(t, "png", asset.Extension)
	assert.Len(t, asset.Salt, saltLength)
	assert.Equal(t, 12, asset.Width)
	assert.Equal(t, 7, asset.Height)
	assert.Equal(t, fixed, asset.CreatedAt)

	key := asset.Salt + ".png"
	assert.Equal(t, raw, store.uploaded[key], "uploaded bytes must match the decoded payload")
	assert.True(t, store.tempPresent[key], "temp file should exist while uploading")
	assert.Empty(t, tempDirEntries(t, tempDir), "temp file must be removed after upload")

	store.AssertCalled(t, "MakePublic", mock.Anything, key)

	out := asset.Serialize()
	assert.Equal(t, testBaseURL+"/"+key, out.URL)
	assert.Equal(t, "2024-05-01 09:30:00.123456", out.CreatedAt)
}

func TestService_Ingest_ExtensionMatchesMimeType(t *testing.T) {
	cases := []struct {
		mime    string
		data    []byte
		wantExt string
		wantCT  string
	}{
		{"image/jpeg", encodeJPEG(t, 3, 4), "jpg", "image/jpeg"},
		{"image/gif", encodeGIF(t, 5, 6), "gif", "image/gif"},
	}
	for _, tc := range cases {
		t.Run(tc.mime, func(t *testing.T) {
			svc, store, _, _ := newTestService(t)
			store.On("Put", mock.Anything, mock.Anything, tc.wantCT).Return(nil)
			store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)

			asset, err := svc.Ingest(context.Background(), dataURL(tc.mime, tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, asset.Extension)
		})
	}
}

func TestService_Ingest_UnsupportedTypeDoesNotUpload(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), "data:image/webp;base64,UklGRg==")
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MakePublic", mock.Anything, mock.Anything)
}

func TestService_Ingest_SameBytesGetDifferentSalts(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)

	payload := dataURL("image/png", encodePNG(t, 2, 2))
	a1, err := svc.Ingest(context.Background(), payload)
	require.NoError(t, err)
	a2, err := svc.Ingest(context.Background(), payload)
	require.NoError(t, err)

	assert.NotEqual(t, a1.Salt, a2.Salt)
	assert.NotEqual(t, a1.ID, a2.ID)
}

func TestService_Ingest_UploadFailureIsHard(t *testing.T) {
	svc, store, _, tempDir := newTestService(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	asset, err := svc.Ingest(context.Background(), dataURL("image/png", encodePNG(t, 2, 2)))
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, tempDirEntries(t, tempDir), "temp file must be removed after a failed upload")
	store.AssertNotCalled(t, "MakePublic", mock.Anything, mock.Anything)
}

func TestService_Ingest_ACLFailureIsHard(t *testing.T) {
	svc, store, _, tempDir := newTestService(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(errors.New("forbidden"))

	_, err := svc.Ingest(context.Background(), dataURL("image/png", encodePNG(t, 2, 2)))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, tempDirEntries(t, tempDir))
}

func TestService_Ingest_UploadUsesBoundedContext(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	svc.opts.UploadTimeout = 50 * time.Millisecond

	store.On("Put", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Ingest(context.Background(), dataURL("image/png", encodePNG(t, 2, 2)))
	require.NoError(t, err)
}

func TestService_Upload_PersistsOnlyOnSuccess(t *testing.T) {
	svc, store, repo, _ := newTestService(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*upload.Asset")).Return(nil).Once()

	asset, err := svc.Upload(context.Background(), dataURL("image/png", encodePNG(t, 3, 3)))
	require.NoError(t, err)
	assert.Equal(t, 3, asset.Width)
	repo.AssertNumberOfCalls(t, "Create", 1)

	_, err = svc.Upload(context.Background(), dataURL("image/png", []byte("nope")))
	assert.ErrorIs(t, err, ErrCorruptImage)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_Upload_RepositoryError(t *testing.T) {
	svc, store, repo, _ := newTestService(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Upload(context.Background(), dataURL("image/png", encodePNG(t, 3, 3)))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestIngestResult(t *testing.T) {
	assert.Equal(t, "ok", ingestResult(nil))
	assert.Equal(t, "unsupported_media_type", ingestResult(ErrUnsupportedMediaType))
	assert.Equal(t, "storage_error", ingestResult(errors.Join(ErrStorage, errors.New("x"))))
	assert.Equal(t, "error", ingestResult(errors.New("other")))
}
