package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/shopgen/internal/config"
)

// ObjectStorage captures the minimal upload operation publishing needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte) error
}

// New returns the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, drive config.DriveConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "minio", "s3":
		return NewMinioClient(ctx, MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "drive":
		return NewDriveClient(ctx, drive.CredentialsJSON, drive.FolderID)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".csv"):
		return "text/csv"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
