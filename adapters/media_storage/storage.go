package media_storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/pkg/logger"
)

// NewFileStorage picks the cleanup backend named by storage.provider.
func NewFileStorage(ctx context.Context, cfg config.Config, log logger.Logger) (service.FileStorage, error) {
	switch cfg.Storage.Provider {
	case config.StorageCloudinary:
		return NewCloudinaryAdapter(cfg, log)
	case config.StorageS3:
		return NewS3Adapter(ctx, cfg, log)
	case config.StorageNone:
		log.Warn("File storage cleanup disabled, deleted videos keep their files")
		return noopStorage{logger: log}, nil
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
}

type noopStorage struct {
	logger logger.Logger
}

func (s noopStorage) Delete(_ context.Context, fileURL string) error {
	s.logger.Debug("Skip file deletion", zap.String("url", fileURL))
	return nil
}
