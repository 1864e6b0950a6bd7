package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])
	assert.Equal(t, "text", colMap["description"])

	// PRAGMA table_info returns an empty result for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	required := []string{"room_id", "scene_version", "iv", "ciphertext"}
	require.NoError(t, db.Exec("CREATE TABLE partial_scenes (room_id TEXT PRIMARY KEY, iv TEXT)").Error)

	columns, err := GetTableColumns(db, "partial_scenes")
	require.NoError(t, err)
	assert.Equal(t, []string{"scene_version", "ciphertext"}, MissingColumns(columns, required))

	store := NewGormStore(db, "")
	require.NoError(t, store.Migrate(context.Background()))
	columns, err = GetTableColumns(db, store.Table())
	require.NoError(t, err)
	assert.Empty(t, MissingColumns(columns, required))
	assert.Equal(t, required, MissingColumns(nil, required))
}
