package assets

import (
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"colabdraw/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client) {
	t.Helper()
	app := fiber.New()
	client := new(mocks.Client)
	svc := newTestService(client, Config{Prefix: "files"}, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, client
}

func TestHandleSaveAssets(t *testing.T) {
	app, client := setupTestApp(t)

	client.On("StatObject", mock.Anything, bucket, "rooms/r1/a", mock.Anything).Return(minio.ObjectInfo{}, mocks.NotFound("rooms/r1/a"))
	client.On("PutObject", mock.Anything, bucket, "rooms/r1/a", mock.Anything, int64(5), mock.Anything).Return(minio.UploadInfo{}, nil)
	client.On("StatObject", mock.Anything, bucket, "rooms/r1/b", mock.Anything).Return(minio.ObjectInfo{}, assert.AnError)

	body := `{"prefix":"rooms/r1","files":[{"id":"a","data":"` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"},{"id":"b","data":""}]}`
	req := httptest.NewRequest("POST", "/assets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result SaveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"a"}, result.Saved)
	assert.Equal(t, []string{"b"}, result.Errored)
}

func TestHandleLoadAssets(t *testing.T) {
	app, client := setupTestApp(t)
	bs := newBlobServer(t)

	item, err := EncodeAsset(roomKey, Asset{ID: "a", MimeType: "image/svg+xml", Data: []byte("<svg/>")})
	require.NoError(t, err)
	bs.blobs["/files/a"] = item.Payload
	client.On("PresignedGetObject", mock.Anything, bucket, "files/a", time.Minute, mock.Anything).Return(bs.url(t, "files/a"), nil)
	client.On("PresignedGetObject", mock.Anything, bucket, "files/b", time.Minute, mock.Anything).Return(bs.url(t, "files/b"), nil)

	req := httptest.NewRequest("POST", "/assets/load", strings.NewReader(`{"ids":["a","b"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRoomKey, roomKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var result LoadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Loaded, 1)
	assert.Equal(t, "image/svg+xml", result.Loaded[0].MimeType)
	assert.Equal(t, []byte("<svg/>"), result.Loaded[0].Data)
	assert.Equal(t, map[string]bool{"b": true}, result.Errored)
}

func TestHandleLoadAssets_BadRequest(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/assets/load", strings.NewReader(`{"ids":["a"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("POST", "/assets/load", strings.NewReader(`{"ids":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRoomKey, roomKey)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestFeature(t *testing.T) {
	feature := NewFeature(nil, Config{}, zap.NewNop())
	assert.Equal(t, "assets", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())
	assert.NoError(t, feature.Load(fiber.New()))
}
