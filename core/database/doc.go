// Package database handles database connections, the scene document store and
// schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections
// based on the application's configuration.
//
// # Document Store
//
// GormStore persists one SceneDocument per room in a configurable table. It maps
// store outcomes onto the error taxonomy of core/errors:
//
//   - missing row on read or update: errors.ErrNotFound
//   - duplicate primary key on create: errors.ErrConflict
//   - anything else: errors.ErrPersistence
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns verify that an existing table provides the
// columns the document store needs. The integrity check uses them before the
// service starts writing.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	store := database.NewGormStore(db, cfg.Scene.Table)
//	doc, err := store.GetDocument(ctx, roomID)
package database
