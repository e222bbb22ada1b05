package storage

import (
	"context"

	"github.com/smallbiznis/propbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendLocal:
		log.Info("invoice archive enabled", zap.String("backend", "local"), zap.String("dir", cfg.Storage.LocalDir))
		return NewLocal(cfg.Storage.LocalDir), nil
	case config.StorageBackendS3:
		log.Info("invoice archive enabled", zap.String("backend", "s3"), zap.String("bucket", cfg.Storage.S3.Bucket))
		return NewS3(context.Background(), cfg.Storage.S3)
	default:
		return noopStore{}, nil
	}
}
