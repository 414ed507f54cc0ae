package storage

import (
	"context"
	"fmt"

	"github.com/wonny/mag7-collector/pkg/config"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// ObjectStore writes one object by key, replacing any previous content
// ⭐ SSOT: 스냅샷 저장 경로는 이 인터페이스만 사용
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte) error
}

// New builds the store selected by STORAGE_BACKEND
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return NewS3Store(ctx, cfg.Storage, log)
	case "file":
		return NewFileStore(cfg.Storage.Dir, log)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}
