// sync-worker runs the course sync pipeline behind a queue or HTTP runtime.
// A request names what to sync; files land in the configured store.
package main

import (
	"log"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/domain/service"
	"github.com/pwrtux/moodle-magnet/internal/domain/storage"
	"github.com/pwrtux/moodle-magnet/internal/handler"
	infrahandler "github.com/pwrtux/moodle-magnet/internal/infrastructure/handlers"
	infrahttp "github.com/pwrtux/moodle-magnet/internal/infrastructure/http"
	infraobs "github.com/pwrtux/moodle-magnet/internal/infrastructure/observability"
	infrastorage "github.com/pwrtux/moodle-magnet/internal/infrastructure/storage"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/storage/adapters/s3"
	"github.com/pwrtux/moodle-magnet/internal/moodle"
	"github.com/pwrtux/moodle-magnet/internal/usecase"
)

func main() {
	cfg := loadConfiguration()

	deps := initializeDependencies(cfg)

	app := buildApplication(cfg, deps)

	startApplication(app)
}

// Dependencies holds all initialized infrastructure components
type Dependencies struct {
	store      storage.FileStore
	archive    storage.FileStore
	httpClient *infrahttp.Client
}

// Application holds the complete application stack
type Application struct {
	handler handler.Handler
	logger  observability.Logger
	metrics observability.Metrics
}

// loadConfiguration loads and validates the application configuration
func loadConfiguration() *config.Config {
	cfgProvider := config.GetProvider()
	cfgProvider.MustLoad()
	return cfgProvider.MustGet()
}

// initializeDependencies sets up all infrastructure dependencies
func initializeDependencies(cfg *config.Config) *Dependencies {
	initializeObservability(cfg)

	logStartup(cfg)

	return &Dependencies{
		store:      initializeStorage(cfg),
		archive:    initializeArchive(cfg),
		httpClient: createHTTPClient(cfg),
	}
}

// initializeObservability sets up logging and metrics infrastructure
func initializeObservability(cfg *config.Config) {
	if err := observability.Initialize(cfg, &infraobs.Factory{}); err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}
}

// logStartup logs application startup information
func logStartup(cfg *config.Config) {
	logger, metrics := observability.MustGetObservability("main")

	logger.Info("Starting application",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment)

	metrics.IncrementCounter("application.starts", nil)
}

// initializeStorage sets up the storage provider with observability
func initializeStorage(cfg *config.Config) storage.FileStore {
	logger, metrics := observability.MustGetObservability("storage")

	factory := infrastorage.NewFactory(logger, metrics)

	if err := storage.Initialize(cfg, factory); err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		metrics.IncrementCounter("init.failures", nil)
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	logger.Info("Storage initialized", "adapter", cfg.Storage.Adapter)
	metrics.IncrementCounter("init.success", nil)

	return storage.MustGetStore()
}

// initializeArchive sets up the secondary mirror store. Returns nil when
// archiving is disabled or the primary store already writes to the archive
// bucket.
func initializeArchive(cfg *config.Config) storage.FileStore {
	if !cfg.Storage.ArchiveEnabled || cfg.Storage.Adapter == "s3" {
		return nil
	}

	logger, metrics := observability.MustGetObservability("storage.archive")

	archive, err := s3.New(cfg, cfg.Storage.ArchiveBucket, logger, metrics)
	if err != nil {
		logger.Error("Failed to initialize archive store", "error", err)
		metrics.IncrementCounter("init.failures", nil)
		log.Fatalf("Failed to initialize archive store: %v", err)
	}

	logger.Info("Archive store initialized", "bucket", cfg.Storage.ArchiveBucket)
	return archive
}

// createHTTPClient creates an HTTP client with observability
func createHTTPClient(cfg *config.Config) *infrahttp.Client {
	logger, metrics := observability.MustGetObservability("client.http")

	return infrahttp.NewClient(cfg.HTTP, logger, metrics)
}

// buildApplication assembles the application layers
func buildApplication(cfg *config.Config, deps *Dependencies) *Application {
	useCase := createUseCase(cfg, deps)

	initializeHandler(useCase, cfg)

	logger, metrics := observability.MustGetObservability("handler.sync")

	return &Application{
		handler: handler.GetProvider().MustGetHandler(),
		logger:  logger,
		metrics: metrics,
	}
}

// createUseCase builds the business logic layer
func createUseCase(cfg *config.Config, deps *Dependencies) handler.UseCase {
	logger, metrics := observability.MustGetObservability("usecase.sync")

	api := moodle.NewClient(cfg.Moodle.BaseURL, cfg.Moodle.Token, deps.httpClient, logger, metrics)

	// No terminal is attached to a worker, so the progress bar stays off
	// regardless of the configured default.
	downloader := service.NewDownloader(deps.httpClient, deps.store, cfg.Moodle.Token,
		false, cfg.Download.MaxFileSize, logger, metrics)

	pipeline := usecase.NewSyncCourses(api, downloader, deps.store, deps.archive, cfg, logger, metrics)

	return usecase.NewSyncWorker(pipeline, logger, metrics)
}

// initializeHandler sets up the request handler
func initializeHandler(useCase handler.UseCase, cfg *config.Config) {
	logger, metrics := observability.MustGetObservability("handler.sync")

	if err := handler.GetProvider().Initialize(useCase, cfg, infrahandler.NewFactory(logger, metrics)); err != nil {
		logger.Error("Failed to initialize handler", "error", err)
		metrics.IncrementCounter("init.failures", nil)
		log.Fatalf("Failed to initialize handler: %v", err)
	}
}

// startApplication starts the application and begins processing
func startApplication(app *Application) {
	app.logger.Info("Starting handler")
	app.metrics.IncrementCounter("handler.starts", nil)

	if err := handler.GetProvider().Start(); err != nil {
		app.logger.Error("Failed to start handler", "error", err)
		app.metrics.IncrementCounter("start.failures", nil)
		log.Fatalf("Failed to start: %v", err)
	}
}
