// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so blob operations
// can be mocked in unit tests (see core/storage/mocks). Both AWS S3 and
// self-hosted MinIO instances are supported.
//
// # Blobs
//
// Blobs layers create-once semantics over a bucket: CreateFile refuses to
// overwrite an existing object and reports errors.ErrConflict instead, and
// DownloadURL hands out presigned URLs so downloads are plain HTTP fetches.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	blobs := storage.NewBlobs(client, cfg.Storage.Bucket, 5*time.Minute)
//	err = blobs.CreateFile(ctx, "files/abc123", payload)
package storage
