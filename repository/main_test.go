package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory database exists per connection; keep the pool at one so
	// every query sees the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entity.Blob{},
		&entity.UserFile{},
		&entity.StorageAccount{},
		&entity.PendingUpload{},
	)
	require.NoError(t, err)
	return db
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(openTestDB(t))
}

func makeBlob(t *testing.T, repo *Repository, hash string, size int64) *entity.Blob {
	t.Helper()
	blob := &entity.Blob{
		ID:          uuid.New(),
		Hash:        hash,
		SizeBytes:   size,
		MimeType:    "application/octet-stream",
		StoragePath: "blobs/" + hash[:2] + "/" + hash,
	}
	require.NoError(t, repo.BlobRepo.Create(blob))
	return blob
}

func makeFile(t *testing.T, repo *Repository, userID uuid.UUID, name string, parentID *uuid.UUID, blobID *uuid.UUID) *entity.UserFile {
	t.Helper()
	file := &entity.UserFile{
		ID:       uuid.New(),
		UserID:   userID,
		ParentID: parentID,
		Name:     name,
		BlobID:   blobID,
		Status:   entity.FileStatusLive,
	}
	require.NoError(t, repo.UserFileRepo.Create(file))
	return file
}

func makeFolder(t *testing.T, repo *Repository, userID uuid.UUID, name string, parentID *uuid.UUID) *entity.UserFile {
	t.Helper()
	folder := &entity.UserFile{
		ID:          uuid.New(),
		UserID:      userID,
		ParentID:    parentID,
		Name:        name,
		IsDirectory: true,
		Status:      entity.FileStatusLive,
	}
	require.NoError(t, repo.UserFileRepo.Create(folder))
	return folder
}
