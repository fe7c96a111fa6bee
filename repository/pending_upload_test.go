package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePending(t *testing.T, repo *Repository, userID uuid.UUID, expiresAt time.Time) *entity.PendingUpload {
	t.Helper()
	pending := &entity.PendingUpload{
		ID:         uuid.New(),
		UserID:     userID,
		UserFileID: uuid.New(),
		Hash:       "abcdefabcdefabcdefabcdefabcdefab",
		SizeBytes:  128,
		MimeType:   "application/pdf",
		StorageKey: "blobs/ab/abcdefabcdefabcdefabcdefabcdefab_128",
		Status:     entity.UploadStatusPending,
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, repo.PendingUploadRepo.Create(pending))
	return pending
}

func TestMarkLinkedWinsExactlyOnce(t *testing.T) {
	repo := newTestRepository(t)
	pending := makePending(t, repo, uuid.New(), time.Now().Add(time.Hour))

	won, err := repo.PendingUploadRepo.MarkLinked(pending.ID)
	require.NoError(t, err)
	assert.True(t, won)

	// Every subsequent attempt loses.
	for i := 0; i < 3; i++ {
		won, err = repo.PendingUploadRepo.MarkLinked(pending.ID)
		require.NoError(t, err)
		assert.False(t, won)
	}

	got, err := repo.PendingUploadRepo.FindByID(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UploadStatusLinked, got.Status)
}

func TestFindExpiredSkipsLinkedAndFresh(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()

	stale := makePending(t, repo, userID, time.Now().Add(-time.Hour))
	makePending(t, repo, userID, time.Now().Add(time.Hour))

	linked := makePending(t, repo, userID, time.Now().Add(-time.Hour))
	won, err := repo.PendingUploadRepo.MarkLinked(linked.ID)
	require.NoError(t, err)
	require.True(t, won)

	expired, err := repo.PendingUploadRepo.FindExpired(time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}
