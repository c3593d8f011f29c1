package logger_test

import (
	"testing"

	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	app := &config.AppConfig{Name: "jobdesk-api", Environment: "development"}

	log, err := logger.NewLogger(&config.LoggingConfig{Level: "warn", Format: "console"}, app)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = logger.NewLogger(&config.LoggingConfig{Level: "nonsense", Format: "json"}, app)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
