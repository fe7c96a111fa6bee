package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	FileExchange = "drive.exchange"

	// PurgeQueue carries permanent-delete events; the worker removes the
	// physical blob once nothing references it anymore.
	PurgeQueue      = "file.purge"
	PurgeRoutingKey = "file.purge"

	// VerifyQueue carries post-link hash verification jobs.
	VerifyQueue      = "upload.verify"
	VerifyRoutingKey = "upload.verify"
)

// PurgeMessage is published when a logical entry is permanently deleted.
type PurgeMessage struct {
	BlobID    string `json:"blob_id"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// VerifyMessage asks the worker to re-hash a freshly linked blob and compare
// it against the client-declared digest.
type VerifyMessage struct {
	PendingUploadID string `json:"pending_upload_id"`
	StorageKey      string `json:"storage_key"`
	ExpectedHash    string `json:"expected_hash"`
	SizeBytes       int64  `json:"size_bytes"`
	Timestamp       int64  `json:"timestamp"`
}

// Publisher is what the controllers publish through.
type Publisher interface {
	PublishPurge(ctx context.Context, msg PurgeMessage) error
	PublishVerify(ctx context.Context, msg VerifyMessage) error
}

// FileProduceService handles publishing file lifecycle messages
type FileProduceService struct {
	channel *amqp.Channel
}

func InitFileProduceService(channel *amqp.Channel) *FileProduceService {
	service := &FileProduceService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		FileExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare File exchange: " + err.Error())
	}

	for queue, routingKey := range map[string]string{
		PurgeQueue:  PurgeRoutingKey,
		VerifyQueue: VerifyRoutingKey,
	} {
		_, err = channel.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			panic("Failed to declare queue " + queue + ": " + err.Error())
		}

		err = channel.QueueBind(
			queue,
			routingKey,
			FileExchange,
			false,
			nil,
		)
		if err != nil {
			panic("Failed to bind queue " + queue + ": " + err.Error())
		}
	}

	return service
}

func (s *FileProduceService) PublishPurge(ctx context.Context, msg PurgeMessage) error {
	msg.Timestamp = time.Now().Unix()
	return s.publish(ctx, PurgeRoutingKey, msg)
}

func (s *FileProduceService) PublishVerify(ctx context.Context, msg VerifyMessage) error {
	msg.Timestamp = time.Now().Unix()
	return s.publish(ctx, VerifyRoutingKey, msg)
}

func (s *FileProduceService) publish(ctx context.Context, routingKey string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		FileExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
