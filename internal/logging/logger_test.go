package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	require.NoError(t, Init("debug"))
	require.NotNil(t, Logger)
	require.True(t, Logger.Core().Enabled(zapcore.DebugLevel))
}

func TestInit_InvalidLevel(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	require.Error(t, Init("loud"))
}

func TestNamed_BeforeInit(t *testing.T) {
	Logger = nil
	require.NotNil(t, Named("epc"))
}
