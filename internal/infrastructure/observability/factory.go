package infraobs

import (
	"fmt"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
	cwAdapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/cloudwatch"
	promAdapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/prometheus"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
)

// Factory creates the logger and metrics implementations selected by
// configuration. The CLI defaults to stdout; the sync worker typically runs
// with prometheus (HTTP) or cloudwatch (Lambda).
type Factory struct{}

func (f *Factory) CreateObservability(cfg *config.Config) (observability.Logger, observability.Metrics, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("configuration is required")
	}

	logger, err := f.createLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	metrics, err := f.createMetrics(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return logger, metrics, nil
}

func (f *Factory) createLogger(cfg *config.Config) (observability.Logger, error) {
	switch cfg.Observability.LoggerAdapter {
	case "", "stdout":
		stdout.UseJSON(cfg.Observability.LogFormat == "json")
		return stdout.NewLogger(), nil
	default:
		return nil, fmt.Errorf("unknown logger adapter: %s", cfg.Observability.LoggerAdapter)
	}
}

func (f *Factory) createMetrics(cfg *config.Config) (observability.Metrics, error) {
	switch cfg.Observability.MetricsAdapter {
	case "", "stdout":
		stdout.UseJSONMetrics(cfg.Observability.LogFormat == "json")
		return stdout.NewMetrics(), nil
	case "prometheus":
		return promAdapter.NewMetrics(cfg.ServiceName), nil
	case "cloudwatch":
		return cwAdapter.NewMetrics(cfg)
	default:
		return nil, fmt.Errorf("unknown metrics adapter: %s", cfg.Observability.MetricsAdapter)
	}
}
