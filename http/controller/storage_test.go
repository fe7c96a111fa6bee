package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStorageRemainingCreatesAccountLazily(t *testing.T) {
	h := newTestHarness(t)

	w := h.do(t, h.ctrl.GetStorageRemaining, http.MethodGet, "/api/storage/remaining", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 0, data["used_storage"])
	assert.EqualValues(t, 10*1024*1024, data["total_storage"])
	assert.EqualValues(t, 10*1024*1024, data["remaining"])
	assert.Equal(t, false, data["is_pro"])

	// The account row now exists with the free-tier quota.
	account, err := h.repo.StorageAccountRepo.FindByUserID(h.userID)
	require.NoError(t, err)
	assert.Equal(t, h.ctrl.Config.EnvConfig.Storage.FreeQuotaBytes, account.TotalBytes)
}

func TestGetStorageRemainingReflectsUsage(t *testing.T) {
	h := newTestHarness(t)
	_, err := h.repo.StorageAccountRepo.EnsureAccount(h.userID, h.ctrl.Config.EnvConfig.Storage.FreeQuotaBytes)
	require.NoError(t, err)
	require.NoError(t, h.repo.StorageAccountRepo.AddUsage(h.userID, 1024))

	w := h.do(t, h.ctrl.GetStorageRemaining, http.MethodGet, "/api/storage/remaining", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1024, data["used_storage"])
	assert.EqualValues(t, 10*1024*1024-1024, data["remaining"])
}
