// Package storage archives raw bulk-import uploads in S3-compatible object
// storage so an admin can audit what a seller actually imported.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImportArchiver stores import files in a MinIO bucket.
type ImportArchiver struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewImportArchiver connects to MinIO and makes sure the archive bucket
// exists. Returns nil without error when storage is not configured, which
// the capture service treats as archiving disabled.
func NewImportArchiver(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*ImportArchiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, nil
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	bucket := cfg.GetMinioBucketImportArchives()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &ImportArchiver{client: client, bucket: bucket, log: log}, nil
}

// Archive uploads one import file and returns its object key. Keys are
// prefixed with the upload date and salted with a short id so repeated
// uploads of the same file never collide.
func (a *ImportArchiver) Archive(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(path.Base(fileName), ext)
	key := fmt.Sprintf("%s/%s_%s%s",
		time.Now().UTC().Format("2006/01/02"),
		baseName,
		uuid.New().String()[:8],
		ext,
	)

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("archive import %s: %w", key, err)
	}

	a.log.Info("import file archived", "bucket", a.bucket, "key", key, "bytes", len(data))
	return key, nil
}
