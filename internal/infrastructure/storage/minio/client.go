package minio

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client the store relies on.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// SnapshotRetentionDays is how long snapshot objects live before the bucket
// lifecycle removes them.
const SnapshotRetentionDays = 30

var (
	ErrMinIOClientClosed = errors.New(errors.ErrCodeInternal, "minio client is closed")
	ErrBucketNotFound    = errors.New(errors.ErrCodeNotFound, "bucket not found")
)

// MinIOClient owns the connection and the snapshot bucket.
type MinIOClient struct {
	client MinIOAPI
	config config.MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects, verifies reachability and prepares the bucket.
func NewMinIOClient(cfg config.MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}

	c, err := NewMinIOClientWithAPI(ctx, client, cfg, log)
	if err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewMinIOClientWithAPI builds a client around api and ensures the bucket.
func NewMinIOClientWithAPI(ctx context.Context, api MinIOAPI, cfg config.MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &MinIOClient{client: api, config: cfg, logger: log}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(ctx)
	return c, nil
}

// EnsureBucket creates the snapshot bucket when it is missing.
func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	bucket := c.config.Bucket
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to check bucket existence")
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to create bucket").WithDetail(bucket)
	}
	c.logger.Info("Created bucket", logging.String("bucket", bucket))
	return nil
}

// SetupLifecycleRules expires old snapshots. Failures are logged only.
func (c *MinIOClient) SetupLifecycleRules(ctx context.Context) {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     "snapshot-cleanup",
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(SnapshotRetentionDays),
			},
			RuleFilter: lifecycle.Filter{Prefix: SnapshotPrefix},
		},
	}
	if err := c.client.SetBucketLifecycle(ctx, c.config.Bucket, cfg); err != nil {
		c.logger.Warn("Failed to set lifecycle for snapshot bucket", logging.Err(err))
	}
}

func (c *MinIOClient) GetClient() MinIOAPI {
	return c.client
}

func (c *MinIOClient) Bucket() string {
	return c.config.Bucket
}

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *MinIOClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Bucket  bool
	Error   string
}

// HealthCheck reports reachability and whether the bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if c.isClosed() {
		return &HealthStatus{Error: ErrMinIOClientClosed.Error()}, ErrMinIOClientClosed
	}
	start := time.Now()
	_, err := c.client.ListBuckets(ctx)
	status := &HealthStatus{Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		return status, err
	}

	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		status.Healthy = false
		status.Error = err.Error()
		return status, err
	}
	status.Bucket = exists
	if !exists {
		status.Healthy = false
		status.Error = ErrBucketNotFound.WithDetail(c.config.Bucket).Error()
		return status, ErrBucketNotFound.WithDetail(c.config.Bucket)
	}
	return status, nil
}

// GeneratePresignedGetURL signs a download link. Zero expiry uses the
// configured default.
func (c *MinIOClient) GeneratePresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = c.config.PresignedTTL
	}
	u, err := c.client.PresignedGetObject(ctx, c.config.Bucket, objectName, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to presign object").WithDetail(objectName)
	}
	return u.String(), nil
}
