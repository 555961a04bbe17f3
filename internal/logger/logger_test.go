package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers verifies that names and fields stored in a context reach the log entry.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)

	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithKV(WithName(ctx, "packager"), "target", "opera")

	WarnKV(ctx, "Certificate missing", "path", "extension-certificate.pem")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "packager", entries[0].LoggerName)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "opera", entries[0].ContextMap()["target"])
	require.Equal(t, "extension-certificate.pem", entries[0].ContextMap()["path"])
}

// TestFromContextFallsBackToGlobal ensures a bare context still yields a usable logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
