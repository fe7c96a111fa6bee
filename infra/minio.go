package infra

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/openpan/drive-service/config"
)

// ObjectStat is the subset of object metadata the registry cares about.
type ObjectStat struct {
	Size        int64
	ContentType string
	ETag        string
}

// ObjectStore is the server-side view of the blob bucket: confirm, stream and
// remove physical content. Transfers themselves go client-to-storage through
// signed URLs and never pass through here.
type ObjectStore interface {
	StatObject(ctx context.Context, key string) (*ObjectStat, error)
	RemoveObject(ctx context.Context, key string) error
	GetObjectStream(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

type MinioClient struct {
	Admin    *madmin.AdminClient
	Client   *minio.Client
	Bucket   string
	Endpoint string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:    madminClient,
		Client:   minioClient,
		Bucket:   cfg.Minio.Bucket,
		Endpoint: endpoint,
	}

	if err := client.EnsureBucket(context.Background(), cfg.Minio.Bucket, cfg.Minio.Region); err != nil {
		panic(fmt.Sprintf("Failed to ensure blob bucket: %v", err))
	}

	return client
}

// EnsureBucket creates the bucket if it doesn't exist
func (m *MinioClient) EnsureBucket(ctx context.Context, bucketName, region string) error {
	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err := m.Client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{
			Region: region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// StatObject confirms an object landed in the blob bucket and returns its
// metadata. Used by the link step to verify a client-reported transfer.
func (m *MinioClient) StatObject(ctx context.Context, key string) (*ObjectStat, error) {
	info, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return &ObjectStat{
		Size:        info.Size,
		ContentType: info.ContentType,
		ETag:        info.ETag,
	}, nil
}

// RemoveObject deletes a physical blob from storage
func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// GetObjectStream streams an object without loading it into memory
func (m *MinioClient) GetObjectStream(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object: %w", err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, stat.Size, nil
}

// DataUsage returns cluster-wide storage usage from the admin API
func (m *MinioClient) DataUsage(ctx context.Context) (*madmin.DataUsageInfo, error) {
	usage, err := m.Admin.DataUsageInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get data usage info: %w", err)
	}
	return &usage, nil
}
