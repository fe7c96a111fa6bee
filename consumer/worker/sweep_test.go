package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/config"
	"github.com/openpan/drive-service/entity"
	infraPkg "github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSweepFixture(t *testing.T) (*SweepWorker, *repository.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Blob{},
		&entity.UserFile{},
		&entity.StorageAccount{},
		&entity.PendingUpload{},
	))

	repo := repository.NewRepository(db)
	infra := &infraPkg.Infra{
		Logger: infraPkg.InitLoggerClient(&config.EnvConfig{}),
	}
	return NewSweepWorker(infra, repo), repo
}

func TestSweepExpiresStalePendingUploads(t *testing.T) {
	w, repo := newSweepFixture(t)
	userID := uuid.New()

	staleFile := &entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "abandoned.bin",
		Status: entity.FileStatusPending,
	}
	require.NoError(t, repo.UserFileRepo.Create(staleFile))

	stale := &entity.PendingUpload{
		ID:         uuid.New(),
		UserID:     userID,
		UserFileID: staleFile.ID,
		Hash:       "aaaabbbbccccddddeeeeffff00001111",
		SizeBytes:  64,
		MimeType:   "application/octet-stream",
		StorageKey: "blobs/aa/aaaabbbbccccddddeeeeffff00001111_64",
		Status:     entity.UploadStatusPending,
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.PendingUploadRepo.Create(stale))

	freshFile := &entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "inflight.bin",
		Status: entity.FileStatusPending,
	}
	require.NoError(t, repo.UserFileRepo.Create(freshFile))

	fresh := &entity.PendingUpload{
		ID:         uuid.New(),
		UserID:     userID,
		UserFileID: freshFile.ID,
		Hash:       "22223333444455556666777788889999",
		SizeBytes:  64,
		MimeType:   "application/octet-stream",
		StorageKey: "blobs/22/22223333444455556666777788889999_64",
		Status:     entity.UploadStatusPending,
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.PendingUploadRepo.Create(fresh))

	w.sweep(context.Background())

	// The stale token is expired and its placeholder entry is gone.
	got, err := repo.PendingUploadRepo.FindByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusExpired, got.Status)

	_, err = repo.UserFileRepo.FindByID(staleFile.ID)
	assert.Error(t, err)

	// The fresh one is untouched.
	got, err = repo.PendingUploadRepo.FindByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusPending, got.Status)

	_, err = repo.UserFileRepo.FindByID(freshFile.ID)
	assert.NoError(t, err)
}
