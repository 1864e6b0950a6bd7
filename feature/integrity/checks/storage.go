package checks

import (
	"context"
	"fmt"

	"colabdraw/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StorageReport is the result of a bucket check.
type StorageReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	Status string `json:"status"` // "ok", "missing"
}

// CheckStorage verifies that the asset bucket exists.
func CheckStorage(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report := &StorageReport{Bucket: bucket, Exists: exists, Status: "ok"}
	if !exists {
		report.Status = "missing"
	}
	return report, nil
}

// FixStorage creates the asset bucket.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}
