package minio

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// SnapshotPrefix is the key prefix every snapshot object lives under.
const SnapshotPrefix = "snapshots/"

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrUploadFailed   = errors.New(errors.ErrCodeStorageFailed, "upload failed")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")
)

// SnapshotRepository stores the files of dashboard snapshots.
type SnapshotRepository interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	Exists(ctx context.Context, objectKey string) (bool, error)
	List(ctx context.Context, snapshotID string) ([]*ObjectMetadata, error)
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

type UploadRequest struct {
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

type ObjectMetadata struct {
	ObjectKey    string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// SnapshotKey joins a snapshot id and file name into an object key.
func SnapshotKey(snapshotID, name string) string {
	return path.Join(SnapshotPrefix, snapshotID, name)
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewSnapshotRepository(client *MinIOClient, logger logging.Logger) SnapshotRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: logger}
}

func (r *minioRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.ObjectKey == "" || len(req.Data) == 0 {
		return nil, ErrInvalidRequest.WithDetail("object key and data are required")
	}
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := r.client.client.PutObject(ctx, r.client.Bucket(), req.ObjectKey,
		bytes.NewReader(req.Data), int64(len(req.Data)),
		minio.PutObjectOptions{ContentType: contentType, UserMetadata: req.Metadata})
	if err != nil {
		r.logger.Error("Snapshot upload failed", logging.String("key", req.ObjectKey), logging.Err(err))
		return nil, ErrUploadFailed.WithDetail(req.ObjectKey).WithCause(err)
	}

	r.logger.Debug("Uploaded object", logging.String("key", req.ObjectKey), logging.Int64("size", info.Size))
	return &UploadResult{
		Bucket:     r.client.Bucket(),
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

func (r *minioRepository) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := r.client.client.StatObject(ctx, r.client.Bucket(), objectKey, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to stat object")
}

func (r *minioRepository) List(ctx context.Context, snapshotID string) ([]*ObjectMetadata, error) {
	prefix := SnapshotPrefix
	if snapshotID != "" {
		prefix = strings.TrimSuffix(SnapshotKey(snapshotID, ""), "/") + "/"
	}
	var out []*ObjectMetadata
	for obj := range r.client.client.ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageFailed, "failed to list objects")
		}
		out = append(out, &ObjectMetadata{
			ObjectKey:    obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (r *minioRepository) Delete(ctx context.Context, objectKey string) error {
	if err := r.client.client.RemoveObject(ctx, r.client.Bucket(), objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailed, "failed to delete object")
	}
	return nil
}

func (r *minioRepository) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return r.client.GeneratePresignedGetURL(ctx, objectKey, expiry)
}
