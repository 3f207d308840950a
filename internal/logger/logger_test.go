package logger

import (
	"context"
	"os"
	"path/filepath"
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
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger checks that scoped loggers travel through contexts.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "classifier")
	ctx = WithKV(ctx, "source", "com.whatsapp")
	ctx = WithFields(ctx, map[string]any{"contact": "Mom"})

	InfoKV(ctx, "Trusted call", "voice", "siren")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "classifier", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	require.Equal(t, "com.whatsapp", fields["source"])
	require.Equal(t, "Mom", fields["contact"])
	require.Equal(t, "siren", fields["voice"])
}

// TestNewWithDebugFile checks that lines are appended to the debug file.
func TestNewWithDebugFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")

	l, closeFn, err := NewWithDebugFile(zapcore.InfoLevel, path)
	require.NoError(t, err)

	l.Infow("Service connected", "feed", "dbus")
	require.NoError(t, l.Sync())
	require.NoError(t, closeFn())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Service connected")

	_, _, err = NewWithDebugFile(zapcore.InfoLevel, filepath.Join(t.TempDir(), "missing", "debug.log"))
	require.Error(t, err)
}
