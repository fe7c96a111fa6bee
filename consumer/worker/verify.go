package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/openpan/drive-service/entity"
	"github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/infra/produce"
	"github.com/openpan/drive-service/repository"
	"github.com/openpan/drive-service/utils"
)

// VerifyConsumer re-hashes freshly linked blobs against the client-declared
// digest. The link path trusts the declared hash for dedup; this worker is
// the slower truth check behind it.
type VerifyConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewVerifyConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *VerifyConsumer {
	return &VerifyConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *VerifyConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.VerifyQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register verify consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Verify Consumer] Started listening on queue: %s", produce.VerifyQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Verify Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Verify Consumer] Channel closed")
					return
				}
				c.handleVerify(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *VerifyConsumer) handleVerify(ctx context.Context, msg amqp.Delivery) {
	var payload produce.VerifyMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Verify Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	pendingID, err := uuid.Parse(payload.PendingUploadID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Verify Consumer] Invalid pending upload ID %s: %v", payload.PendingUploadID, err)
		_ = msg.Nack(false, false)
		return
	}

	if err := c.executeVerify(ctx, pendingID, payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Verify Consumer] Verification failed for %s: %v", pendingID, err)
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

func (c *VerifyConsumer) executeVerify(ctx context.Context, pendingID uuid.UUID, payload produce.VerifyMessage) error {
	stream, size, err := c.infra.Minio.GetObjectStream(ctx, payload.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to open object %s: %w", payload.StorageKey, err)
	}
	defer stream.Close()

	digest, read, err := utils.NewChunkedHasher().Sum(ctx, stream)
	if err != nil {
		return fmt.Errorf("failed to hash object %s: %w", payload.StorageKey, err)
	}

	if digest != payload.ExpectedHash || read != payload.SizeBytes {
		c.infra.Logger.ErrorWithContextf(ctx, nil,
			"[Verify Consumer] Content mismatch for %s: declared hash=%s size=%d, actual hash=%s size=%d (object size %d)",
			payload.StorageKey, payload.ExpectedHash, payload.SizeBytes, digest, read, size)

		if err := c.repository.PendingUploadRepo.UpdateStatus(pendingID, entity.UploadStatusFailed); err != nil {
			return fmt.Errorf("failed to mark upload %s failed: %w", pendingID, err)
		}
		return nil
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Verify Consumer] Object %s verified: hash=%s size=%d", payload.StorageKey, digest, read)
	return nil
}
