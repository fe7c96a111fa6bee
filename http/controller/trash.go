package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
	"github.com/openpan/drive-service/utils"
	"gorm.io/gorm"
)

// ListTrash returns the caller's trashed entries.
func (ctrl *Controller) ListTrash(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	q := repository.TrashQuery{
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	}
	if pageStr := c.Query("page"); pageStr != "" {
		q.Page, _ = strconv.Atoi(pageStr)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		q.Limit, _ = strconv.Atoi(limitStr)
	}

	files, total, err := ctrl.Repository.UserFileRepo.ListTrashed(userID, q)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Trash] Failed to list trash for user %s", userID)
		utils.JSON500(c, "Failed to list trash")
		return
	}

	utils.JSON200(c, gin.H{
		"items": files,
		"total": total,
	})
}

// RestoreFile brings a trashed entry back with its name, parent and blob
// binding intact. When the original parent no longer qualifies the entry
// lands at the root.
func (ctrl *Controller) RestoreFile(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	file, err := ctrl.Repository.UserFileRepo.Restore(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON404(c, "Entry not found in trash")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Trash] Failed to restore entry %s", id)
		utils.JSON500(c, "Failed to restore entry")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Trash] Entry %s restored for user %s", file.ID, userID)
	utils.JSON200(c, file)
}

// PermanentDelete removes a trashed entry for good. The caller's usage drops
// by the blob size and a purge job decides asynchronously whether the physical
// object is still referenced by anyone else.
func (ctrl *Controller) PermanentDelete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid file ID")
		return
	}

	file, err := ctrl.Repository.UserFileRepo.FindTrashedByIDAndUser(id, userID)
	if err != nil {
		utils.JSON404(c, "Entry not found in trash")
		return
	}

	if err := ctrl.Repository.UserFileRepo.DeleteRow(file.ID); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Trash] Failed to delete entry %s", file.ID)
		utils.JSON500(c, "Failed to delete entry")
		return
	}

	if file.BlobID != nil {
		blob, err := ctrl.Repository.BlobRepo.FindByID(*file.BlobID)
		if err == nil {
			if err := ctrl.Repository.StorageAccountRepo.AddUsage(userID, -blob.SizeBytes); err != nil {
				ctrl.Logger.ErrorWithContextf(ctx, err, "[Trash] Failed to release storage for user %s", userID)
			}
			ctrl.invalidateStorageCache(ctx, userID)
		}

		if ctrl.Publisher != nil {
			err := ctrl.Publisher.PublishPurge(ctx, produce.PurgeMessage{
				BlobID: file.BlobID.String(),
				UserID: userID.String(),
			})
			if err != nil {
				ctrl.Logger.WarningWithContextf(ctx, "[Trash] Failed to publish purge job for blob %s: %v", file.BlobID, err)
			}
		}
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Trash] Entry %s permanently deleted by user %s", file.ID, userID)
	utils.JSON200(c, gin.H{"id": file.ID})
}
