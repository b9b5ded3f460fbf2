package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProductionDefaultsToInfoLevel(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewVerboseEnablesDebugLevel(t *testing.T) {
	logger, err := New(Options{Verbose: true})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDevelopmentEncoding(t *testing.T) {
	logger, err := New(Options{Development: true})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewNopDiscardsEverything(t *testing.T) {
	logger := NewNop()
	require.NotNil(t, logger)
	sugared := logger.Sugar()
	require.NotPanics(t, func() {
		sugared.Infow("discarded", "key", "value")
	})
}
