package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEnforcesFolderInvariants(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 10)

	// A directory must not carry a blob.
	err := repo.UserFileRepo.Create(&entity.UserFile{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        "docs",
		IsDirectory: true,
		BlobID:      &blob.ID,
		Status:      entity.FileStatusLive,
	})
	assert.ErrorIs(t, err, ErrFolderInvariant)

	// A live file must carry one.
	err = repo.UserFileRepo.Create(&entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "notes.txt",
		Status: entity.FileStatusLive,
	})
	assert.ErrorIs(t, err, ErrFolderInvariant)

	// A pending file may exist without a blob until its transfer is linked.
	err = repo.UserFileRepo.Create(&entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "incoming.bin",
		Status: entity.FileStatusPending,
	})
	assert.NoError(t, err)
}

func TestCreateRejectsBadParents(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	otherUser := uuid.New()
	blob := makeBlob(t, repo, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", 10)

	plainFile := makeFile(t, repo, userID, "plain.txt", nil, &blob.ID)
	foreignFolder := makeFolder(t, repo, otherUser, "theirs", nil)

	// Parent must be a directory.
	err := repo.UserFileRepo.Create(&entity.UserFile{
		ID:       uuid.New(),
		UserID:   userID,
		ParentID: &plainFile.ID,
		Name:     "child.txt",
		BlobID:   &blob.ID,
		Status:   entity.FileStatusLive,
	})
	assert.ErrorIs(t, err, ErrInvalidParent)

	// Parent must belong to the same user.
	err = repo.UserFileRepo.Create(&entity.UserFile{
		ID:       uuid.New(),
		UserID:   userID,
		ParentID: &foreignFolder.ID,
		Name:     "child.txt",
		BlobID:   &blob.ID,
		Status:   entity.FileStatusLive,
	})
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestListExcludesTrashedAndPending(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "cccccccccccccccccccccccccccccccc", 10)

	visible := makeFile(t, repo, userID, "visible.txt", nil, &blob.ID)
	trashed := makeFile(t, repo, userID, "trashed.txt", nil, &blob.ID)
	_, err := repo.UserFileRepo.SoftDelete(trashed.ID, userID)
	require.NoError(t, err)

	require.NoError(t, repo.UserFileRepo.Create(&entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "pending.bin",
		Status: entity.FileStatusPending,
	}))

	files, total, err := repo.UserFileRepo.List(userID, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, files, 1)
	assert.Equal(t, visible.ID, files[0].ID)

	// The complement holds for the trash listing.
	trashedFiles, trashTotal, err := repo.UserFileRepo.ListTrashed(userID, TrashQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), trashTotal)
	require.Len(t, trashedFiles, 1)
	assert.Equal(t, trashed.ID, trashedFiles[0].ID)
}

func TestListIsScopedToUser(t *testing.T) {
	repo := newTestRepository(t)
	userA := uuid.New()
	userB := uuid.New()
	blob := makeBlob(t, repo, "dddddddddddddddddddddddddddddddd", 10)

	makeFile(t, repo, userA, "mine.txt", nil, &blob.ID)
	makeFile(t, repo, userB, "theirs.txt", nil, &blob.ID)

	files, total, err := repo.UserFileRepo.List(userA, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, files, 1)
	assert.Equal(t, "mine.txt", files[0].Name)
}

func TestSoftDeleteDirectoryTrashesSubtree(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", 10)

	root := makeFolder(t, repo, userID, "root", nil)
	sub := makeFolder(t, repo, userID, "sub", &root.ID)
	leaf := makeFile(t, repo, userID, "leaf.txt", &sub.ID, &blob.ID)

	_, err := repo.UserFileRepo.SoftDelete(root.ID, userID)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{root.ID, sub.ID, leaf.ID} {
		got, err := repo.UserFileRepo.FindByID(id)
		require.NoError(t, err)
		assert.True(t, got.IsTrashed(), "entry %s should be trashed", id)
	}
}

func TestRestoreRoundTripPreservesEverything(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "ffffffffffffffffffffffffffffffff", 42)

	folder := makeFolder(t, repo, userID, "docs", nil)
	file := makeFile(t, repo, userID, "report.pdf", &folder.ID, &blob.ID)

	_, err := repo.UserFileRepo.SoftDelete(file.ID, userID)
	require.NoError(t, err)

	restored, err := repo.UserFileRepo.Restore(file.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, file.Name, restored.Name)
	require.NotNil(t, restored.ParentID)
	assert.Equal(t, folder.ID, *restored.ParentID)
	require.NotNil(t, restored.BlobID)
	assert.Equal(t, blob.ID, *restored.BlobID)
	assert.Nil(t, restored.DeletedAt)
}

func TestRestoreFallsBackToRootWhenParentIsGone(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "0123456789abcdef0123456789abcdef", 10)

	folder := makeFolder(t, repo, userID, "docs", nil)
	file := makeFile(t, repo, userID, "report.pdf", &folder.ID, &blob.ID)

	_, err := repo.UserFileRepo.SoftDelete(file.ID, userID)
	require.NoError(t, err)
	_, err = repo.UserFileRepo.SoftDelete(folder.ID, userID)
	require.NoError(t, err)

	restored, err := repo.UserFileRepo.Restore(file.ID, userID)
	require.NoError(t, err)
	assert.Nil(t, restored.ParentID)
}

func TestRestoreIsScopedToOwner(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "fedcba9876543210fedcba9876543210", 10)

	file := makeFile(t, repo, userID, "secret.txt", nil, &blob.ID)
	_, err := repo.UserFileRepo.SoftDelete(file.ID, userID)
	require.NoError(t, err)

	_, err = repo.UserFileRepo.Restore(file.ID, uuid.New())
	assert.Error(t, err)
}

func TestCountByBlobID(t *testing.T) {
	repo := newTestRepository(t)
	userA := uuid.New()
	userB := uuid.New()
	blob := makeBlob(t, repo, "11112222333344445555666677778888", 10)

	a := makeFile(t, repo, userA, "a.txt", nil, &blob.ID)
	makeFile(t, repo, userB, "b.txt", nil, &blob.ID)

	count, err := repo.UserFileRepo.CountByBlobID(blob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.UserFileRepo.DeleteRow(a.ID))

	count, err = repo.UserFileRepo.CountByBlobID(blob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBindBlobFlipsPendingToLive(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()
	blob := makeBlob(t, repo, "99990000aaaabbbbccccddddeeee1111", 10)

	file := &entity.UserFile{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "incoming.bin",
		Status: entity.FileStatusPending,
	}
	require.NoError(t, repo.UserFileRepo.Create(file))

	require.NoError(t, repo.UserFileRepo.BindBlob(file.ID, blob.ID))

	got, err := repo.UserFileRepo.FindByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.FileStatusLive, got.Status)
	require.NotNil(t, got.BlobID)
	assert.Equal(t, blob.ID, *got.BlobID)
}
