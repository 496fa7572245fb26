package infraobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pwrtux/moodle-magnet/internal/config"
)

func TestFactoryCreateObservability(t *testing.T) {
	factory := &Factory{}

	cfg := config.DefaultConfig()
	cfg.Observability.LoggerAdapter = "stdout"
	cfg.Observability.MetricsAdapter = "stdout"

	logger, metrics, err := factory.CreateObservability(cfg)

	assert.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, metrics)
}

func TestFactoryCreateObservabilityNilConfig(t *testing.T) {
	factory := &Factory{}

	logger, metrics, err := factory.CreateObservability(nil)

	assert.Error(t, err)
	assert.Nil(t, logger)
	assert.Nil(t, metrics)
}

func TestFactoryUnknownAdapters(t *testing.T) {
	factory := &Factory{}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{
			name: "unknown logger adapter",
			mutate: func(c *config.Config) {
				c.Observability.LoggerAdapter = "syslog"
			},
		},
		{
			name: "unknown metrics adapter",
			mutate: func(c *config.Config) {
				c.Observability.MetricsAdapter = "statsd"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			_, _, err := factory.CreateObservability(cfg)
			assert.Error(t, err)
		})
	}
}
