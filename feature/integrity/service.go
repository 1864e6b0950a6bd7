package integrity

import (
	"context"

	"colabdraw/core/database"
	"colabdraw/core/storage"
	"colabdraw/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	db     *gorm.DB
	table  string
	logger *zap.Logger
}

// NewService creates a new integrity service. db may be nil when no database
// is configured; schema checks then report an error.
func NewService(client storage.Client, storageCfg storage.Config, db *gorm.DB, table string, logger *zap.Logger) *Service {
	if table == "" {
		table = database.DefaultSceneTable
	}
	return &Service{
		client: client,
		bucket: storageCfg.Bucket,
		region: storageCfg.Region,
		db:     db,
		table:  table,
		logger: logger,
	}
}

// CheckStorage reports whether the asset bucket exists.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.bucket)
}

// FixStorage creates the asset bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// CheckSchema validates the scene table columns.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, s.table)
}

// FixSchema creates or migrates the scene table.
func (s *Service) FixSchema(ctx context.Context) error {
	if s.db == nil {
		return errNoDatabase
	}
	if err := database.NewGormStore(s.db, s.table).Migrate(ctx); err != nil {
		s.logger.Error("Failed to migrate scene table", zap.String("table", s.table), zap.Error(err))
		return err
	}
	s.logger.Info("Migrated scene table", zap.String("table", s.table))
	return nil
}
