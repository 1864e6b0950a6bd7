package checks

import (
	"context"
	"testing"

	"colabdraw/core/database"
	"colabdraw/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, "scenes")
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckSchema(db, "scenes")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Contains(t, report.MissingColumns, "room_id")
	assert.Contains(t, report.MissingColumns, "ciphertext")

	require.NoError(t, database.NewGormStore(db, "scenes").Migrate(context.Background()))

	report, err = CheckSchema(db, "scenes")
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Empty(t, report.MissingColumns)
	assert.Empty(t, report.TypeMismatches)
}

func TestCheckSchema_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("room_id", "varchar(191)", "NO", "PRI", nil, "").
		AddRow("scene_version", "bigint", "NO", "", nil, "").
		AddRow("iv", "varchar(64)", "NO", "", nil, "").
		AddRow("ciphertext", "varchar(255)", "NO", "", nil, "").
		AddRow("created_at", "datetime(3)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `scenes`").WillReturnRows(rows)

	report, err := CheckSchema(db, "scenes")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Equal(t, []string{"updated_at"}, report.MissingColumns)
	require.Len(t, report.TypeMismatches, 1)
	assert.Contains(t, report.TypeMismatches[0], "ciphertext")
}

func TestCheckSchema_InspectError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `scenes`").WillReturnError(assert.AnError)

	report, err := CheckSchema(db, "scenes")
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 1)
}

func TestCheckStorage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		exists     bool
		err        error
		wantStatus string
		wantErr    bool
	}{
		{"Exists", true, nil, "ok", false},
		{"Missing", false, nil, "missing", false},
		{"Error", false, assert.AnError, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.Client)
			client.On("BucketExists", mock.Anything, "files").Return(tt.exists, tt.err)

			report, err := CheckStorage(ctx, client, "files")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.exists, report.Exists)
		})
	}
}

func TestFixStorage(t *testing.T) {
	client := new(mocks.Client)
	client.On("MakeBucket", mock.Anything, "files", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil).Once()
	client.On("MakeBucket", mock.Anything, "other", mock.Anything).Return(assert.AnError).Once()

	assert.NoError(t, FixStorage(context.Background(), client, "files", "eu-west-1", zap.NewNop()))
	assert.Error(t, FixStorage(context.Background(), client, "other", "", zap.NewNop()))
	client.AssertExpectations(t)
}
