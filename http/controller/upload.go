package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/http/controller/dto"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
	"github.com/openpan/drive-service/utils"
	"gorm.io/gorm"
)

// blobKey derives the object key from content identity, never from the
// user-chosen filename. Identical bytes collide into one physical object no
// matter what they are called or where they sit in the tree.
func blobKey(hash string, sizeBytes int64) string {
	return fmt.Sprintf("blobs/%s/%s_%d", hash[:2], hash, sizeBytes)
}

// CheckUpload implements the dedup pre-flight: quota gate first, then a blob
// identity lookup. On a hit a new logical entry is bound to the existing blob
// immediately and no signed URL is ever issued.
func (ctrl *Controller) CheckUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.UploadCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	ok, account, err := ctrl.Repository.StorageAccountRepo.CheckLimit(
		userID, req.Size, ctrl.Config.EnvConfig.Storage.FreeQuotaBytes)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to check storage limit for %s", userID)
		utils.JSON500(c, "Failed to check storage limit")
		return
	}
	if !ok {
		ctrl.Logger.WarningWithContextf(ctx, "[Upload] Storage limit exceeded for user %s: used=%d total=%d required=%d",
			userID, account.UsedBytes, account.TotalBytes, req.Size)
		utils.JSON200(c, gin.H{
			"exists": false,
			"error": gin.H{
				"code":          "STORAGE_LIMIT_EXCEEDED",
				"required_size": req.Size,
				"used_storage":  account.UsedBytes,
				"total_storage": account.TotalBytes,
			},
		})
		return
	}

	blob, err := ctrl.Repository.BlobRepo.FindByIdentity(req.Hash, req.Size, req.Type)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Blob lookup failed for hash %s", req.Hash)
			utils.JSON500(c, "Failed to check upload")
			return
		}
		utils.JSON200(c, gin.H{"exists": false})
		return
	}

	// Dedup hit: link a new logical entry to the existing blob, no transfer.
	file := &entity.UserFile{
		ID:       uuid.New(),
		UserID:   userID,
		ParentID: req.ParentID,
		Name:     req.Name,
		BlobID:   &blob.ID,
		Status:   entity.FileStatusLive,
	}
	if err := ctrl.Repository.UserFileRepo.Create(file); err != nil {
		if errors.Is(err, repository.ErrInvalidParent) {
			utils.JSON400(c, "Invalid parent folder")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to create dedup entry for user %s", userID)
		utils.JSON500(c, "Failed to create file entry")
		return
	}

	if err := ctrl.Repository.StorageAccountRepo.AddUsage(userID, blob.SizeBytes); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to attribute storage for user %s", userID)
	}
	ctrl.invalidateStorageCache(ctx, userID)

	ctrl.Logger.InfoWithContextf(ctx, "[Upload] Dedup hit for hash %s: entry %s linked to blob %s", req.Hash, file.ID, blob.ID)
	utils.JSON200(c, gin.H{
		"exists": true,
		"data": dto.UploadCheckData{
			Location: blob.StoragePath,
			ID:       file.ID,
		},
	})
}

// createPending creates the pending logical entry plus its finalize token.
func (ctrl *Controller) createPending(c *gin.Context, userID uuid.UUID, req dto.SignedUploadRequest, uploadID string) (*entity.PendingUpload, error) {
	key := blobKey(req.Hash, req.Size)

	file := &entity.UserFile{
		ID:       uuid.New(),
		UserID:   userID,
		ParentID: req.ParentID,
		Name:     req.Name,
		Status:   entity.FileStatusPending,
	}
	if err := ctrl.Repository.UserFileRepo.Create(file); err != nil {
		return nil, err
	}

	pending := &entity.PendingUpload{
		ID:         uuid.New(),
		UserID:     userID,
		UserFileID: file.ID,
		Hash:       req.Hash,
		SizeBytes:  req.Size,
		MimeType:   req.Type,
		StorageKey: key,
		UploadID:   uploadID,
		Status:     entity.UploadStatusPending,
		ExpiresAt:  time.Now().Add(time.Duration(ctrl.Config.EnvConfig.Upload.PendingTTLSeconds) * time.Second),
	}
	if err := ctrl.Repository.PendingUploadRepo.Create(pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// gateQuota runs the advisory quota check shared by both signed-URL routes.
// Returns false after writing the response when the request must not proceed.
func (ctrl *Controller) gateQuota(c *gin.Context, userID uuid.UUID, size int64) bool {
	ctx := c.Request.Context()
	ok, account, err := ctrl.Repository.StorageAccountRepo.CheckLimit(
		userID, size, ctrl.Config.EnvConfig.Storage.FreeQuotaBytes)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to check storage limit for %s", userID)
		utils.JSON500(c, "Failed to check storage limit")
		return false
	}
	if !ok {
		utils.JSON200Error(c, "STORAGE_LIMIT_EXCEEDED", "Storage limit exceeded", gin.H{
			"required_size": size,
			"used_storage":  account.UsedBytes,
			"total_storage": account.TotalBytes,
		})
		return false
	}
	return true
}

// CreateSignedUpload issues a single time-boxed PUT URL for small files.
func (ctrl *Controller) CreateSignedUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.SignedUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	if !ctrl.gateQuota(c, userID, req.Size) {
		return
	}

	pending, err := ctrl.createPending(c, userID, req, "")
	if err != nil {
		if errors.Is(err, repository.ErrInvalidParent) {
			utils.JSON400(c, "Invalid parent folder")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to create pending upload for user %s", userID)
		utils.JSON500(c, "Failed to create signed upload")
		return
	}

	expires := time.Duration(ctrl.Config.EnvConfig.Upload.SignedURLExpireSeconds) * time.Second
	url, err := ctrl.Signer.PresignPut(ctx, pending.StorageKey, req.Type, expires)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign put for key %s", pending.StorageKey)
		utils.JSON500(c, "Failed to create signed upload")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Upload] Signed upload issued for user %s key %s", userID, pending.StorageKey)
	utils.JSON200(c, dto.SignedUploadResponse{
		URL:        url,
		UserFileID: pending.UserFileID,
	})
}

// CreateMultipartSignedUpload initiates a multipart transfer for large files
// and returns the identifiers the client needs to sign individual parts.
func (ctrl *Controller) CreateMultipartSignedUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.SignedUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	if !ctrl.gateQuota(c, userID, req.Size) {
		return
	}

	key := blobKey(req.Hash, req.Size)
	uploadID, err := ctrl.Signer.CreateMultipart(ctx, key, req.Type)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to create multipart upload for key %s", key)
		utils.JSON500(c, "Failed to create multipart upload")
		return
	}

	pending, err := ctrl.createPending(c, userID, req, uploadID)
	if err != nil {
		_ = ctrl.Signer.AbortMultipart(ctx, key, uploadID)
		if errors.Is(err, repository.ErrInvalidParent) {
			utils.JSON400(c, "Invalid parent folder")
			return
		}
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to create pending multipart upload for user %s", userID)
		utils.JSON500(c, "Failed to create multipart upload")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Upload] Multipart upload %s initiated for user %s key %s", uploadID, userID, key)
	utils.JSON200(c, dto.MultipartSignedResponse{
		Key:        key,
		UploadID:   uploadID,
		UserFileID: pending.UserFileID,
	})
}

// SignUploadPart issues a signed URL for one part of an initiated multipart
// transfer.
func (ctrl *Controller) SignUploadPart(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.SignPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	pending, err := ctrl.Repository.PendingUploadRepo.FindByKeyAndUser(req.Key, userID)
	if err != nil {
		utils.JSON404(c, "Upload not found")
		return
	}
	if pending.UploadID != req.UploadID {
		utils.JSON400(c, "Upload ID does not match")
		return
	}

	expires := time.Duration(ctrl.Config.EnvConfig.Upload.SignedURLExpireSeconds) * time.Second
	url, err := ctrl.Signer.PresignPart(ctx, req.Key, req.UploadID, req.PartNumber, expires)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign part %d for key %s", req.PartNumber, req.Key)
		utils.JSON500(c, "Failed to sign upload part")
		return
	}

	utils.JSON200(c, gin.H{"url": url, "part_number": req.PartNumber})
}

// CompleteMultipartUpload finalizes the transfer on the provider. The entry
// only goes live via the link step afterwards.
func (ctrl *Controller) CompleteMultipartUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.CompleteMultipartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	pending, err := ctrl.Repository.PendingUploadRepo.FindByKeyAndUser(req.Key, userID)
	if err != nil {
		utils.JSON404(c, "Upload not found")
		return
	}
	if pending.UploadID != req.UploadID {
		utils.JSON400(c, "Upload ID does not match")
		return
	}

	if err := ctrl.Signer.CompleteMultipart(ctx, req.Key, req.UploadID, req.Parts); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to complete multipart upload %s", req.UploadID)
		utils.JSON500(c, "Failed to complete multipart upload")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Upload] Multipart upload %s completed for key %s", req.UploadID, req.Key)
	utils.JSON200(c, gin.H{"key": req.Key})
}

// LinkUpload is the idempotent finalize step. Calling it zero, one, or many
// times for the same entry has the same effect: the blob is bound once and
// storage is counted once.
func (ctrl *Controller) LinkUpload(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized")
		return
	}

	var req dto.LinkUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	file, err := ctrl.Repository.UserFileRepo.FindByIDAndUser(req.UserFileID, userID)
	if err != nil {
		utils.JSON404(c, "File entry not found")
		return
	}

	// Already live: the transfer was linked before. Report success.
	if file.Status == entity.FileStatusLive {
		utils.JSON200(c, file)
		return
	}

	pending, err := ctrl.Repository.PendingUploadRepo.FindByUserFileID(file.ID)
	if err != nil {
		utils.JSON404(c, "Pending upload not found")
		return
	}
	if pending.StorageKey != req.Location {
		utils.JSON400(c, "Location does not match pending upload")
		return
	}

	// Confirm the bytes actually landed; the client report alone is not
	// trusted for existence.
	stat, err := ctrl.Store.StatObject(ctx, pending.StorageKey)
	if err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Upload] Link requested but object %s not found: %v", pending.StorageKey, err)
		utils.JSON400(c, "Transfer not completed: object not found in storage")
		return
	}
	if stat.Size != pending.SizeBytes {
		ctrl.Logger.WarningWithContextf(ctx, "[Upload] Size mismatch for %s: declared=%d actual=%d",
			pending.StorageKey, pending.SizeBytes, stat.Size)
		utils.JSON400(c, "Transfer incomplete: size mismatch")
		return
	}

	// Fast path: a SetNX lock short-circuits concurrent link calls before they
	// hit the database. Best effort only, the status transition below is the
	// authoritative guard.
	if ctrl.Cache != nil {
		acquired, err := ctrl.Cache.SetNX(ctx, "upload:link:"+pending.ID.String(), 1, time.Minute)
		if err == nil && !acquired {
			utils.JSON200(c, file)
			return
		}
	}

	// The status transition is the authoritative idempotency guard; only the
	// winning call attributes storage.
	won, err := ctrl.Repository.PendingUploadRepo.MarkLinked(pending.ID)
	if err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to mark upload %s linked", pending.ID)
		utils.JSON500(c, "Failed to link upload")
		return
	}
	if !won {
		utils.JSON200(c, file)
		return
	}

	blob := &entity.Blob{
		ID:          uuid.New(),
		Hash:        pending.Hash,
		SizeBytes:   pending.SizeBytes,
		MimeType:    pending.MimeType,
		StoragePath: pending.StorageKey,
	}
	if err := ctrl.Repository.BlobRepo.FirstOrCreateByIdentity(blob); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to create blob for upload %s", pending.ID)
		utils.JSON500(c, "Failed to link upload")
		return
	}

	if err := ctrl.Repository.UserFileRepo.BindBlob(file.ID, blob.ID); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to bind blob %s to entry %s", blob.ID, file.ID)
		utils.JSON500(c, "Failed to link upload")
		return
	}

	if err := ctrl.Repository.StorageAccountRepo.AddUsage(userID, pending.SizeBytes); err != nil {
		ctrl.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to attribute storage for user %s", userID)
	}
	ctrl.invalidateStorageCache(ctx, userID)

	if ctrl.Publisher != nil {
		err := ctrl.Publisher.PublishVerify(ctx, produce.VerifyMessage{
			PendingUploadID: pending.ID.String(),
			StorageKey:      pending.StorageKey,
			ExpectedHash:    pending.Hash,
			SizeBytes:       pending.SizeBytes,
		})
		if err != nil {
			ctrl.Logger.WarningWithContextf(ctx, "[Upload] Failed to publish verify job for %s: %v", pending.ID, err)
		}
	}

	updated, err := ctrl.Repository.UserFileRepo.FindByIDAndUser(file.ID, userID)
	if err != nil {
		utils.JSON500(c, "Failed to load linked entry")
		return
	}

	ctrl.Logger.InfoWithContextf(ctx, "[Upload] Entry %s linked to blob %s for user %s", file.ID, blob.ID, userID)
	utils.JSON200(c, updated)
}
