package storage

import (
	"context"
	"fmt"

	appdoc "github.com/lexdesk/backend/internal/application/document"
	infraconfig "github.com/lexdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns the storage backend selected by cfg.Driver
func New(ctx context.Context, cfg *infraconfig.StorageConfig, publicURL string, logger *zap.Logger) (appdoc.ObjectStorage, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 document storage", zap.String("bucket", s.Bucket()))
		return s, nil
	case "memory", "":
		logger.Warn("Using in-memory document storage; files are lost on restart")
		return NewMemoryObjectStorage(publicURL + "/files"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
