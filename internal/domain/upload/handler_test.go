package upload

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/pkg/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *MockStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:", logger.NewNop(), false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &Asset{}))

	tempDir := t.TempDir()
	store := newMockStore(tempDir)
	svc := NewService(NewRepository(db), store, logger.NewNop(), Options{TempDir: tempDir, UploadTimeout: time.Second})

	r := gin.New()
	RegisterRoutes(r, NewHandler(svc))
	return r, db, store
}

func doJSON(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUploadHandler_Success(t *testing.T) {
	r, db, store := setupTestRouter(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("MakePublic", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(map[string]string{"image_data": dataURL("image/png", encodePNG(t, 4, 4))})
	rr := doJSON(r, http.MethodPost, "/upload/", string(body))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["url"], testBaseURL+"/"))
	assert.True(t, strings.HasSuffix(resp["url"], ".png"))
	assert.NotEmpty(t, resp["created_at"])

	var stored []Asset
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, resp["url"], stored[0].URL())
	assert.Equal(t, 4, stored[0].Width)
}

func TestUploadHandler_MissingImageData(t *testing.T) {
	r, db, store := setupTestRouter(t)

	for _, body := range []string{`{}`, `{"image_data": null}`, `{"image_data": ""}`} {
		rr := doJSON(r, http.MethodPost, "/upload/", body)
		assert.Equal(t, http.StatusNotFound, rr.Code, body)
		assert.JSONEq(t, `{"error":"No base64 image found!"}`, rr.Body.String())
	}

	var count int64
	require.NoError(t, db.Model(&Asset{}).Count(&count).Error)
	assert.Zero(t, count)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadHandler_Failures(t *testing.T) {
	r, db, store := setupTestRouter(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"image_data":`, http.StatusBadRequest},
		{"unsupported", `{"image_data":"data:image/webp;base64,AAAA"}`, http.StatusUnsupportedMediaType},
		{"bad encoding", `{"image_data":"data:image/png;base64,@@@"}`, http.StatusBadRequest},
		{"corrupt", `{"image_data":"data:image/png;base64,bm9wZQ=="}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(r, http.MethodPost, "/upload/", tc.body)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}

	var count int64
	require.NoError(t, db.Model(&Asset{}).Count(&count).Error)
	assert.Zero(t, count)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadHandler_StorageFailure(t *testing.T) {
	r, db, store := setupTestRouter(t)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	body, _ := json.Marshal(map[string]string{"image_data": dataURL("image/gif", encodeGIF(t, 2, 2))})
	rr := doJSON(r, http.MethodPost, "/upload/", string(body))
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var count int64
	require.NoError(t, db.Model(&Asset{}).Count(&count).Error)
	assert.Zero(t, count, "no asset row is written when the upload fails")
}
