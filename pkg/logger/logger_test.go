package logger_test

import (
	"context"
	"testing"
	"uribeacon/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		debug       bool
	}{
		{name: "development", environment: logger.DevelopmentEnvironment, debug: true},
		{name: "production", environment: logger.ProductionEnvironment, debug: false},
		{name: "production at debug", environment: logger.ProductionEnvironment, level: "debug", debug: true},
		{name: "development at warn", environment: logger.DevelopmentEnvironment, level: "warn", debug: false},
		{name: "unknown level ignored", environment: logger.DevelopmentEnvironment, level: "loud", debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(tt.environment, tt.level)
			})

			ctx := context.Background()
			require.NotNil(t, logger.Get(ctx))
			require.Equal(t, tt.debug, logger.IsDebug(ctx))
		})
	}
}

func TestGetAndWithLogger(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx), "should return default logger when context has no logger")

	customLogger, _ := zap.NewDevelopment()
	require.Equal(t, customLogger, logger.Get(logger.WithLogger(ctx, customLogger)))
}

func TestWithFieldsAndSlog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))
	ctx = logger.WithFields(ctx, zap.String("beacon", "b1"))

	logger.Info(ctx, "zap message", zap.Int("n", 1))
	logger.Slog(ctx).Info("slog message", "url", "http://www.eff.org")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "zap message", entries[0].Message)
	require.Equal(t, "b1", entries[0].ContextMap()["beacon"])
	require.Equal(t, "slog message", entries[1].Message)
	require.Equal(t, "b1", entries[1].ContextMap()["beacon"])
	require.Equal(t, "http://www.eff.org", entries[1].ContextMap()["url"])
}

func TestLoggingFunctions(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	ctx := context.Background()

	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", zap.String("key", "value"))
		logger.Info(ctx, "info message", zap.String("key", "value"))
		logger.Warn(ctx, "warn message", zap.String("key", "value"))
		logger.Error(ctx, "error message", zap.String("key", "value"))
	})
}
