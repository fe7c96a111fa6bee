package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFreeQuota = int64(10 * 1024 * 1024) // 10MB for readable arithmetic

func TestEnsureAccountCreatesFreeTier(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()

	account, err := repo.StorageAccountRepo.EnsureAccount(userID, testFreeQuota)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.UsedBytes)
	assert.Equal(t, testFreeQuota, account.TotalBytes)

	// Second call returns the same row, it does not reset usage.
	require.NoError(t, repo.StorageAccountRepo.AddUsage(userID, 100))
	again, err := repo.StorageAccountRepo.EnsureAccount(userID, testFreeQuota)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.UsedBytes)
}

func TestCheckLimitBoundary(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()

	_, err := repo.StorageAccountRepo.EnsureAccount(userID, testFreeQuota)
	require.NoError(t, err)
	require.NoError(t, repo.StorageAccountRepo.AddUsage(userID, 9*1024*1024))

	// 9MB used + 1MB fits exactly.
	ok, _, err := repo.StorageAccountRepo.CheckLimit(userID, 1024*1024, testFreeQuota)
	require.NoError(t, err)
	assert.True(t, ok)

	// 9MB used + 2MB does not.
	ok, account, err := repo.StorageAccountRepo.CheckLimit(userID, 2*1024*1024, testFreeQuota)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(9*1024*1024), account.UsedBytes)
}

func TestAddUsageFloorsAtZero(t *testing.T) {
	repo := newTestRepository(t)
	userID := uuid.New()

	_, err := repo.StorageAccountRepo.EnsureAccount(userID, testFreeQuota)
	require.NoError(t, err)
	require.NoError(t, repo.StorageAccountRepo.AddUsage(userID, 500))

	// A replayed release must not drive usage negative.
	require.NoError(t, repo.StorageAccountRepo.AddUsage(userID, -800))

	account, err := repo.StorageAccountRepo.FindByUserID(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.UsedBytes)
}
