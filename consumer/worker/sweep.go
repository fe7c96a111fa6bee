package worker

import (
	"context"
	"time"

	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/repository"
)

const (
	sweepInterval  = 15 * time.Minute
	sweepBatchSize = 200
)

// SweepWorker expires stale pending uploads. A signed URL that was issued but
// never linked leaves behind a PENDING entry and its finalize token; once the
// TTL passes both are garbage and the sweep reclaims them.
type SweepWorker struct {
	infra      *infra.Infra
	repository *repository.Repository
}

func NewSweepWorker(infra *infra.Infra, repo *repository.Repository) *SweepWorker {
	return &SweepWorker{
		infra:      infra,
		repository: repo,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		w.infra.Logger.InfoWithContextf(ctx, "[Sweep Worker] Started, interval %s", sweepInterval)

		for {
			select {
			case <-ctx.Done():
				w.infra.Logger.InfoWithContextf(ctx, "[Sweep Worker] Shutting down...")
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

func (w *SweepWorker) sweep(ctx context.Context) {
	expired, err := w.repository.PendingUploadRepo.FindExpired(time.Now().UTC(), sweepBatchSize)
	if err != nil {
		w.infra.Logger.ErrorWithContextf(ctx, err, "[Sweep Worker] Failed to list expired uploads: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	w.infra.Logger.InfoWithContextf(ctx, "[Sweep Worker] Expiring %d stale pending uploads", len(expired))

	for _, pending := range expired {
		if err := w.expireOne(ctx, pending); err != nil {
			w.infra.Logger.ErrorWithContextf(ctx, err, "[Sweep Worker] Failed to expire upload %s: %v", pending.ID, err)
		}
	}
}

func (w *SweepWorker) expireOne(ctx context.Context, pending entity.PendingUpload) error {
	if err := w.repository.PendingUploadRepo.UpdateStatus(pending.ID, entity.UploadStatusExpired); err != nil {
		return err
	}

	// Abandoned multipart transfers hold provider-side part storage until
	// aborted.
	if pending.UploadID != "" && w.infra.Signer != nil {
		if err := w.infra.Signer.AbortMultipart(ctx, pending.StorageKey, pending.UploadID); err != nil {
			w.infra.Logger.WarningWithContextf(ctx, "[Sweep Worker] Failed to abort multipart upload %s: %v", pending.UploadID, err)
		}
	}

	// The placeholder entry never went live; nothing references it.
	file, err := w.repository.UserFileRepo.FindByID(pending.UserFileID)
	if err == nil && file.Status == entity.FileStatusPending {
		if err := w.repository.UserFileRepo.DeleteRow(file.ID); err != nil {
			return err
		}
	}

	w.infra.Logger.InfoWithContextf(ctx, "[Sweep Worker] Upload %s expired (key %s)", pending.ID, pending.StorageKey)
	return nil
}
