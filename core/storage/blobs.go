package storage

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"colabdraw/core/errors"

	"github.com/minio/minio-go/v7"
)

const defaultPresignExpiry = 5 * time.Minute

// Blobs is a create-once blob store over a single bucket.
type Blobs struct {
	client        Client
	bucket        string
	presignExpiry time.Duration
}

// NewBlobs creates a blob store. A non-positive presignExpiry uses five minutes.
func NewBlobs(client Client, bucket string, presignExpiry time.Duration) *Blobs {
	if presignExpiry <= 0 {
		presignExpiry = defaultPresignExpiry
	}
	return &Blobs{client: client, bucket: bucket, presignExpiry: presignExpiry}
}

// Bucket returns the bucket name.
func (b *Blobs) Bucket() string {
	return b.bucket
}

// CreateFile stores data under key. It fails with errors.ErrConflict when the
// object already exists; existing objects are never overwritten. The stat
// avoids uploading known objects, and the put carries If-None-Match so a
// concurrent create of the same key loses with a conflict instead of
// overwriting. Stores that ignore If-None-Match leave that window open.
func (b *Blobs) CreateFile(ctx context.Context, key string, data []byte) error {
	_, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return errors.Wrapf(errors.ErrConflict, "object %s", key)
	}
	if !IsNotFound(err) {
		return errors.Persistence(err, "stat object "+key)
	}

	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	opts.SetMatchETagExcept("*")
	_, err = b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if IsPreconditionFailed(err) {
		return errors.Wrapf(errors.ErrConflict, "object %s", key)
	}
	if err != nil {
		return errors.Persistence(err, "put object "+key)
	}
	return nil
}

// DownloadURL returns a presigned URL for key.
func (b *Blobs) DownloadURL(ctx context.Context, key string) (*url.URL, error) {
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, b.presignExpiry, nil)
	if err != nil {
		return nil, errors.Persistence(err, "presign object "+key)
	}
	return u, nil
}
