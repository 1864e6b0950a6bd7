package database

import (
	"context"
	"time"

	"colabdraw/core/errors"

	"gorm.io/gorm"
)

// DefaultSceneTable is the table holding scene documents when none is configured.
const DefaultSceneTable = "scenes"

// SceneDocument is the persisted form of a room's scene.
type SceneDocument struct {
	// RoomID identifies the room the scene belongs to.
	RoomID string `gorm:"column:room_id;primaryKey;size:191" json:"roomId"`
	// SceneVersion is the fingerprint of the encrypted elements.
	SceneVersion int64 `gorm:"column:scene_version;not null" json:"sceneVersion"`
	// IV is the base64 encoded initialization vector.
	IV string `gorm:"column:iv;size:64;not null" json:"iv"`
	// Ciphertext is the base64 encoded encrypted element list.
	Ciphertext string `gorm:"column:ciphertext;type:text;not null" json:"ciphertext"`
	// CreatedAt is set by gorm on insert.
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	// UpdatedAt is set by gorm on every write.
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// DocumentStore defines the interface for scene document operations.
type DocumentStore interface {
	// GetDocument returns the document of a room, or errors.ErrNotFound.
	GetDocument(ctx context.Context, roomID string) (*SceneDocument, error)
	// CreateDocument inserts a new document; errors.ErrConflict if the room already has one.
	CreateDocument(ctx context.Context, doc *SceneDocument) error
	// UpdateDocument overwrites an existing document; errors.ErrNotFound if there is none.
	UpdateDocument(ctx context.Context, doc *SceneDocument) error
}

// GormStore is a DocumentStore backed by a gorm connection.
type GormStore struct {
	db    *gorm.DB
	table string
}

// NewGormStore creates a document store using table (DefaultSceneTable if empty).
func NewGormStore(db *gorm.DB, table string) *GormStore {
	if table == "" {
		table = DefaultSceneTable
	}
	return &GormStore{db: db, table: table}
}

// Table returns the name of the backing table.
func (s *GormStore) Table() string {
	return s.table
}

// Migrate creates or updates the scene table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&SceneDocument{}); err != nil {
		return errors.Persistence(err, "migrate scene table")
	}
	return nil
}

// GetDocument implements DocumentStore.
func (s *GormStore) GetDocument(ctx context.Context, roomID string) (*SceneDocument, error) {
	var doc SceneDocument
	err := s.db.WithContext(ctx).Table(s.table).Where("room_id = ?", roomID).Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errors.ErrNotFound, "scene for room %s", roomID)
		}
		return nil, errors.Persistence(err, "get scene document")
	}
	return &doc, nil
}

// CreateDocument implements DocumentStore.
func (s *GormStore) CreateDocument(ctx context.Context, doc *SceneDocument) error {
	err := s.db.WithContext(ctx).Table(s.table).Create(doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(errors.ErrConflict, "scene for room %s", doc.RoomID)
		}
		return errors.Persistence(err, "create scene document")
	}
	return nil
}

// UpdateDocument implements DocumentStore.
func (s *GormStore) UpdateDocument(ctx context.Context, doc *SceneDocument) error {
	doc.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Table(s.table).
		Where("room_id = ?", doc.RoomID).
		Updates(map[string]any{
			"scene_version": doc.SceneVersion,
			"iv":            doc.IV,
			"ciphertext":    doc.Ciphertext,
			"updated_at":    doc.UpdatedAt,
		})
	if result.Error != nil {
		return errors.Persistence(result.Error, "update scene document")
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "scene for room %s", doc.RoomID)
	}
	return nil
}
