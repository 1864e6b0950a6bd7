package storage_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"colabdraw/core/errors"
	"colabdraw/core/storage"
	"colabdraw/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBlobs_CreateFile(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		blobs := storage.NewBlobs(client, "files", 0)

		client.On("StatObject", mock.Anything, "files", "rooms/a", mock.Anything).
			Return(minio.ObjectInfo{}, mocks.NotFound("rooms/a"))
		client.On("PutObject", mock.Anything, "files", "rooms/a", mock.Anything, int64(3), mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "application/octet-stream" && o.Header().Get("If-None-Match") == "*"
		})).Return(minio.UploadInfo{}, nil)

		require.NoError(t, blobs.CreateFile(ctx, "rooms/a", []byte("abc")))
		client.AssertExpectations(t)
	})

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		blobs := storage.NewBlobs(client, "files", 0)

		client.On("StatObject", mock.Anything, "files", "a", mock.Anything).
			Return(minio.ObjectInfo{Key: "a", Size: 3}, nil)

		err := blobs.CreateFile(ctx, "a", []byte("abc"))
		assert.True(t, errors.Is(err, errors.ErrConflict))
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StatFailure", func(t *testing.T) {
		client := new(mocks.Client)
		blobs := storage.NewBlobs(client, "files", 0)

		client.On("StatObject", mock.Anything, "files", "a", mock.Anything).
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})

		err := blobs.CreateFile(ctx, "a", []byte("abc"))
		assert.True(t, errors.Is(err, errors.ErrPersistence))
	})

	t.Run("CreatedConcurrently", func(t *testing.T) {
		client := new(mocks.Client)
		blobs := storage.NewBlobs(client, "files", 0)

		client.On("StatObject", mock.Anything, "files", "a", mock.Anything).
			Return(minio.ObjectInfo{}, mocks.NotFound("a"))
		client.On("PutObject", mock.Anything, "files", "a", mock.Anything, int64(3), mock.Anything).
			Return(minio.UploadInfo{}, mocks.PreconditionFailed("a"))

		err := blobs.CreateFile(ctx, "a", []byte("abc"))
		assert.True(t, errors.Is(err, errors.ErrConflict))
		assert.False(t, errors.Is(err, errors.ErrPersistence))
	})

	t.Run("PutFailure", func(t *testing.T) {
		client := new(mocks.Client)
		blobs := storage.NewBlobs(client, "files", 0)

		client.On("StatObject", mock.Anything, "files", "a", mock.Anything).
			Return(minio.ObjectInfo{}, mocks.NotFound("a"))
		client.On("PutObject", mock.Anything, "files", "a", mock.Anything, int64(3), mock.Anything).
			Return(minio.UploadInfo{}, errors.New("connection reset"))

		err := blobs.CreateFile(ctx, "a", []byte("abc"))
		assert.True(t, errors.Is(err, errors.ErrPersistence))
	})
}

func TestBlobs_DownloadURL(t *testing.T) {
	client := new(mocks.Client)
	blobs := storage.NewBlobs(client, "files", 2*time.Minute)
	assert.Equal(t, "files", blobs.Bucket())

	u, _ := url.Parse("http://localhost:9000/files/a?X-Amz-Signature=abc")
	client.On("PresignedGetObject", mock.Anything, "files", "a", 2*time.Minute, mock.Anything).Return(u, nil)
	client.On("PresignedGetObject", mock.Anything, "files", "b", 2*time.Minute, mock.Anything).Return(nil, errors.New("bad credentials"))

	got, err := blobs.DownloadURL(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = blobs.DownloadURL(context.Background(), "b")
	assert.True(t, errors.Is(err, errors.ErrPersistence))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, storage.IsNotFound(mocks.NotFound("a")))
	assert.True(t, storage.IsNotFound(minio.ErrorResponse{StatusCode: 404}))
	assert.False(t, storage.IsNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}))
	assert.False(t, storage.IsNotFound(errors.New("boom")))
	assert.False(t, storage.IsNotFound(nil))
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, storage.IsPreconditionFailed(mocks.PreconditionFailed("a")))
	assert.True(t, storage.IsPreconditionFailed(minio.ErrorResponse{StatusCode: 412}))
	assert.False(t, storage.IsPreconditionFailed(mocks.NotFound("a")))
	assert.False(t, storage.IsPreconditionFailed(nil))
}
