package observability

import (
	"fmt"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/domain/base"
)

const observabilityProviderKey = "observability"

// Components bundles the root logger and metrics backends.
type Components struct {
	Logger  Logger
	Metrics Metrics
}

// factoryAdapter bridges ObservabilityFactory onto the generic base factory.
type factoryAdapter struct {
	factory ObservabilityFactory
}

func (a *factoryAdapter) Create(cfg *config.Config) (*Components, error) {
	logger, metrics, err := a.factory.CreateObservability(cfg)
	if err != nil {
		return nil, err
	}
	return &Components{Logger: logger, Metrics: metrics}, nil
}

// GetProvider returns the singleton observability provider.
func GetProvider() *base.Provider[*Components] {
	return base.GetProvider[*Components](observabilityProviderKey)
}

// Initialize creates the configured backends once at startup.
func Initialize(cfg *config.Config, factory ObservabilityFactory) error {
	if factory == nil {
		return fmt.Errorf("observability factory is required")
	}
	return GetProvider().Initialize(cfg, &factoryAdapter{factory: factory})
}

// GetObservability returns logger and metrics scoped to a component.
func GetObservability(component string) (Logger, Metrics, error) {
	components, err := GetProvider().Get()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := GetProvider().GetConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := getScopedLogger(components.Logger, cfg, component)
	metrics := getScopedMetrics(components.Metrics, cfg, component)

	return logger, metrics, nil
}

// GetLogger returns a logger scoped to a component.
func GetLogger(component string) (Logger, error) {
	components, err := GetProvider().Get()
	if err != nil {
		return nil, err
	}

	cfg, err := GetProvider().GetConfig()
	if err != nil {
		return nil, err
	}

	return getScopedLogger(components.Logger, cfg, component), nil
}

// GetMetrics returns metrics scoped to a component.
func GetMetrics(component string) (Metrics, error) {
	components, err := GetProvider().Get()
	if err != nil {
		return nil, err
	}

	cfg, err := GetProvider().GetConfig()
	if err != nil {
		return nil, err
	}

	return getScopedMetrics(components.Metrics, cfg, component), nil
}

// MustGetObservability panics when the provider is not initialized.
func MustGetObservability(component string) (Logger, Metrics) {
	logger, metrics, err := GetObservability(component)
	if err != nil {
		panic(fmt.Sprintf("failed to get observability: %v", err))
	}
	return logger, metrics
}

// MustGetLogger panics when the provider is not initialized.
func MustGetLogger(component string) Logger {
	logger, err := GetLogger(component)
	if err != nil {
		panic(fmt.Sprintf("failed to get logger: %v", err))
	}
	return logger
}

// MustGetMetrics panics when the provider is not initialized.
func MustGetMetrics(component string) Metrics {
	metrics, err := GetMetrics(component)
	if err != nil {
		panic(fmt.Sprintf("failed to get metrics: %v", err))
	}
	return metrics
}

// IsInitialized reports whether Initialize has completed.
func IsInitialized() bool {
	return GetProvider().IsInitialized()
}

// Reset clears the provider (useful for testing).
func Reset() {
	GetProvider().Reset()
}

func getScopedLogger(logger Logger, cfg *config.Config, component string) Logger {
	return logger.WithFields(map[string]interface{}{
		"service":   cfg.ServiceName,
		"version":   cfg.Version,
		"env":       cfg.Environment,
		"component": component,
	})
}

func getScopedMetrics(metrics Metrics, cfg *config.Config, component string) Metrics {
	return metrics.WithTags(map[string]string{
		"service":   cfg.ServiceName,
		"version":   cfg.Version,
		"env":       cfg.Environment,
		"component": component,
	})
}
