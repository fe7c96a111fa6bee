package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
	"gorm.io/gorm"
)

// PurgeConsumer removes physical blobs once the last logical reference is
// gone. Reference counting happens here, against the registry, not at publish
// time: a blob that picked up a new reference between delete and delivery
// simply survives.
type PurgeConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewPurgeConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *PurgeConsumer {
	return &PurgeConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *PurgeConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.PurgeQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register purge consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Started listening on queue: %s", produce.PurgeQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Purge Consumer] Channel closed")
					return
				}
				c.handlePurge(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *PurgeConsumer) handlePurge(ctx context.Context, msg amqp.Delivery) {
	var payload produce.PurgeMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	blobID, err := uuid.Parse(payload.BlobID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Invalid blob ID %s: %v", payload.BlobID, err)
		_ = msg.Nack(false, false)
		return
	}

	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.executePurge(ctx, blobID)
		if err == nil {
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Purge Consumer] Attempt %d/%d failed for blob %s: %v", attempt, maxRetries, blobID, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	_ = msg.Nack(false, true)
}

func (c *PurgeConsumer) executePurge(ctx context.Context, blobID uuid.UUID) error {
	blob, err := c.repository.BlobRepo.FindByID(blobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already purged by an earlier delivery.
			return nil
		}
		return fmt.Errorf("failed to load blob %s: %w", blobID, err)
	}

	count, err := c.repository.UserFileRepo.CountByBlobID(blobID)
	if err != nil {
		return fmt.Errorf("failed to count references for blob %s: %w", blobID, err)
	}
	if count > 0 {
		c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Blob %s still has %d references, keeping it", blobID, count)
		return nil
	}

	if err := c.infra.Minio.RemoveObject(ctx, blob.StoragePath); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", blob.StoragePath, err)
	}

	if err := c.repository.BlobRepo.Delete(blobID); err != nil {
		return fmt.Errorf("failed to delete blob row %s: %w", blobID, err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Purge Consumer] Blob %s purged, object %s removed", blobID, blob.StoragePath)
	return nil
}
