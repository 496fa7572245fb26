package infrahandler

import (
	"fmt"
	"os"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	"github.com/pwrtux/moodle-magnet/internal/handler"
	httpadapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/handlers/adapters/http"
	lambdaadapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/handlers/adapters/lambda"
)

// Factory creates handlers wrapped in the middleware chain and binds them to
// the configured runtime platform.
type Factory struct {
	logger  observability.Logger
	metrics observability.Metrics
}

func NewFactory(logger observability.Logger, metrics observability.Metrics) *Factory {
	if logger == nil || metrics == nil {
		panic("handler factory requires logger and metrics")
	}
	return &Factory{
		logger:  logger,
		metrics: metrics,
	}
}

func (f *Factory) CreateHandler(useCase handler.UseCase, cfg *config.Config) (handler.Handler, error) {
	if useCase == nil {
		return nil, fmt.Errorf("use case is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	componentLogger := f.logger.WithFields(map[string]interface{}{
		"component": "handler",
		"use_case":  useCase.Name(),
	})

	return NewHandler(useCase, cfg, componentLogger, f.metrics), nil
}

func (f *Factory) CreateAdapter(h handler.Handler, cfg *config.Config) (handler.Adapter, error) {
	if h == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	platform := cfg.Handler.Platform
	if platform == "" {
		platform = DetectPlatform()
	}

	switch platform {
	case "lambda":
		return lambdaadapter.NewAdapter(h, &cfg.Lambda), nil
	case "http":
		return httpadapter.NewAdapter(h, &cfg.HTTP, &cfg.Handler), nil
	default:
		return nil, fmt.Errorf("unknown handler platform: %s", platform)
	}
}

// DetectPlatform picks the runtime platform from the environment
func DetectPlatform() string {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return "lambda"
	}
	return "http"
}
