package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	l, err := New("", "development")
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel), "debug by default")

	l, err = New("warn", "production")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud", "development")
	require.Error(t, err)
}

func TestMust_PanicsOnBadLevel(t *testing.T) {
	require.Panics(t, func() { Must("loud", "") })
}
