package controller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openpan/drive-service/config"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Logger     *infra.LoggerClient
	Cache      *infra.RedisClient
	Signer     infra.Signer
	Store      infra.ObjectStore
	Publisher  produce.Publisher
}

func NewController(config *config.Config, infraClient *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	return &Controller{
		Config:     config,
		Infra:      infraClient,
		Repository: repo,
		Logger:     infraClient.Logger,
		Cache:      infraClient.Redis,
		Signer:     infraClient.Signer,
		Store:      infraClient.Minio,
		Publisher:  infraClient.Produce.FileService,
	}
}

const storageAccountCacheTTL = 60 * time.Second

func storageAccountCacheKey(userID uuid.UUID) string {
	return "storage:account:" + userID.String()
}

func (ctrl *Controller) invalidateStorageCache(ctx context.Context, userID uuid.UUID) {
	if ctrl.Cache == nil {
		return
	}
	if err := ctrl.Cache.Delete(ctx, storageAccountCacheKey(userID)); err != nil {
		ctrl.Logger.WarningWithContextf(ctx, "[Storage] Failed to invalidate account cache for %s: %v", userID, err)
	}
}
