package controller

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/utils"
)

type storageRemaining struct {
	UsedBytes      int64 `json:"used_storage"`
	TotalBytes     int64 `json:"total_storage"`
	RemainingBytes int64 `json:"remaining"`
	IsPro          bool  `json:"is_pro"`
}

// GetStorageRemaining reports the caller's quota snapshot. Reads go through a
// short-lived cache; writes on the upload/purge paths invalidate it.
func (ctrl *Controller) GetStorageRemaining(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	if ctrl.Cache != nil {
		var cached storageRemaining
		err := ctrl.Cache.Get(ctx, storageAccountCacheKey(userID), &cached)
		if err == nil {
			utils.JSON200(c, cached)
			return
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			ctrl.Logger.WarningWithContextf(ctx, "[Storage] Account cache read failed for %s: %v", userID, err)
		}
	}

	account, err := ctrl.Repository.StorageAccountRepo.EnsureAccount(
		userID, ctrl.Config.EnvConfig.Storage.FreeQuotaBytes)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Storage] Failed to load account for %s", userID)
		utils.JSON500(c, "Failed to load storage account")
		return
	}

	var plan entity.PlanInfo
	if len(account.Plan) > 0 {
		if err := json.Unmarshal(account.Plan, &plan); err != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Storage] Malformed plan for %s: %v", userID, err)
		}
	}

	remaining := account.TotalBytes - account.UsedBytes
	if remaining < 0 {
		remaining = 0
	}

	resp := storageRemaining{
		UsedBytes:      account.UsedBytes,
		TotalBytes:     account.TotalBytes,
		RemainingBytes: remaining,
		IsPro:          plan.IsPro,
	}

	if ctrl.Cache != nil {
		if err := ctrl.Cache.Set(ctx, storageAccountCacheKey(userID), resp, storageAccountCacheTTL); err != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Storage] Account cache write failed for %s: %v", userID, err)
		}
	}

	utils.JSON200(c, resp)
}

// GetAdminUsage exposes cluster-wide bucket usage from the storage admin API.
func (ctrl *Controller) GetAdminUsage(c *gin.Context) {
	ctx := c.Request.Context()

	minioClient, ok := ctrl.Store.(*infra.MinioClient)
	if !ok || minioClient.Admin == nil {
		utils.JSON500(c, "Storage admin API is not available")
		return
	}

	usage, err := minioClient.DataUsage(ctx)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Storage] Failed to fetch cluster data usage")
		utils.JSON500(c, "Failed to fetch storage usage")
		return
	}

	utils.JSON200(c, gin.H{
		"objects_total_count": usage.ObjectsTotalCount,
		"objects_total_size":  usage.ObjectsTotalSize,
		"buckets_count":       usage.BucketsCount,
		"last_update":         usage.LastUpdate,
	})
}
