package infrahandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/handler/mocks"
	httpadapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/handlers/adapters/http"
	lambdaadapter "github.com/pwrtux/moodle-magnet/internal/infrastructure/handlers/adapters/lambda"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
)

func newTestFactory() *Factory {
	return NewFactory(stdout.NewLogger(), stdout.NewMetrics())
}

func newTestUseCase() *mocks.MockUseCase {
	useCase := new(mocks.MockUseCase)
	useCase.On("Name").Return("sync")
	return useCase
}

func TestCreateHandler(t *testing.T) {
	factory := newTestFactory()

	h, err := factory.CreateHandler(newTestUseCase(), config.DefaultConfig())

	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.NotNil(t, h.Logger())
	assert.NotNil(t, h.Metrics())
}

func TestCreateHandlerRequiresUseCaseAndConfig(t *testing.T) {
	factory := newTestFactory()

	_, err := factory.CreateHandler(nil, config.DefaultConfig())
	assert.Error(t, err)

	_, err = factory.CreateHandler(newTestUseCase(), nil)
	assert.Error(t, err)
}

func TestCreateAdapterSelectsPlatform(t *testing.T) {
	factory := newTestFactory()
	h, err := factory.CreateHandler(newTestUseCase(), config.DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name     string
		platform string
		check    func(t *testing.T, adapter interface{})
	}{
		{
			name:     "http platform",
			platform: "http",
			check: func(t *testing.T, adapter interface{}) {
				assert.IsType(t, &httpadapter.Adapter{}, adapter)
			},
		},
		{
			name:     "lambda platform",
			platform: "lambda",
			check: func(t *testing.T, adapter interface{}) {
				assert.IsType(t, &lambdaadapter.Adapter{}, adapter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Handler.Platform = tt.platform

			adapter, err := factory.CreateAdapter(h, cfg)

			require.NoError(t, err)
			tt.check(t, adapter)
		})
	}
}

func TestCreateAdapterUnknownPlatform(t *testing.T) {
	factory := newTestFactory()
	h, err := factory.CreateHandler(newTestUseCase(), config.DefaultConfig())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Handler.Platform = "openfaas"

	_, err = factory.CreateAdapter(h, cfg)
	assert.ErrorContains(t, err, "unknown handler platform")
}

func TestDetectPlatform(t *testing.T) {
	t.Run("defaults to http", func(t *testing.T) {
		t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
		assert.Equal(t, "http", DetectPlatform())
	})

	t.Run("detects lambda runtime", func(t *testing.T) {
		t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "moodle-magnet-sync")
		assert.Equal(t, "lambda", DetectPlatform())
	})
}
