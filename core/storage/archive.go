package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Archive uploads data as objectName, creating the bucket first when it does
// not exist yet.
func Archive(ctx context.Context, client Client, cfg Config, objectName string, data []byte, contentType string) (minio.UploadInfo, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return minio.UploadInfo{}, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	info, err := client.PutObject(ctx, cfg.Bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return info, nil
}
