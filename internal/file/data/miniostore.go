package data

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"
)

// MinIOStore is the object-storage content area, for deployments that keep
// uploads off the local disk.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(ctx context.Context, client *minio.Client, bucket string) (*MinIOStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return &MinIOStore{client: client, bucket: bucket}, nil
}

// Save streams content with unknown length; the returned size is the byte
// count actually transferred. A failed put is removed best-effort so no
// partial object lingers.
func (s *MinIOStore) Save(ctx context.Context, key string, content io.Reader, contentType string) (int64, string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, content, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		_ = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		return 0, "", fmt.Errorf("failed to put object: %w", err)
	}

	return info.Size, s.bucket + "/" + key, nil
}

func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	// GetObject is lazy; stat first so a missing object is reported here,
	// not mid-stream.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("object %q: %w", key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("object %q: %w", key, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to stat object: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
