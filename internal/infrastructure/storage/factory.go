package infrastorage

import (
	"fmt"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/storage/adapters/fs"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/storage/adapters/s3"
)

// Factory creates the FileStore selected by configuration. The filesystem
// adapter rooted at the save path is the default; the s3 adapter backs fully
// cloud-resident worker deployments.
type Factory struct {
	logger  observability.Logger
	metrics observability.Metrics
}

func NewFactory(logger observability.Logger, metrics observability.Metrics) storage.StorageFactory {
	if logger == nil || metrics == nil {
		panic("logger and metrics are required for storage factory")
	}
	return &Factory{
		logger:  logger,
		metrics: metrics,
	}
}

func (f *Factory) Create(cfg *config.Config) (storage.FileStore, error) {
	switch cfg.Storage.Adapter {
	case "filesystem", "":
		f.logger.Info("Creating filesystem storage adapter",
			"path", cfg.Download.SavePath)
		return fs.New(cfg.Download.SavePath, f.logger, f.metrics)

	case "s3":
		f.logger.Info("Creating S3 storage adapter",
			"bucket", cfg.Storage.ArchiveBucket,
			"region", cfg.Storage.S3.Region)
		return s3.New(cfg, cfg.Storage.ArchiveBucket, f.logger, f.metrics)

	default:
		return nil, fmt.Errorf("unsupported storage adapter: %s", cfg.Storage.Adapter)
	}
}
