package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.With("draft_id", "d1").Info(ctx, "saved", "tag", 3)
	log.Warn(ctx, "discard failed")
	log.Debug(ctx, "stale")

	entries := logs.All()
	require.Len(t, entries, 3)

	require.Equal(t, "saved", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "d1", fields["draft_id"])
	require.EqualValues(t, 3, fields["tag"])

	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestParseZapLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, parseZapLevel("DEBUG"))
	require.Equal(t, zapcore.ErrorLevel, parseZapLevel("error"))
	require.Equal(t, zapcore.InfoLevel, parseZapLevel("bogus"))
}
