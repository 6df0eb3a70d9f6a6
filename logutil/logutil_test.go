package logutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmorganca/outlines/envconfig"
)

func TestNewLoggerLabelsTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)
	logger.Log(context.Background(), LevelTrace, "hello", "k", "v")
	require.Contains(t, buf.String(), "TRACE")
	require.Contains(t, buf.String(), "hello")
	require.Contains(t, buf.String(), "k=v")
}

func TestInitTogglesOnDebug(t *testing.T) {
	prev := envconfig.Debug
	defer func() { envconfig.Debug = prev }()

	envconfig.Debug = true
	Init()
	require.True(t, slog.Default().Enabled(context.Background(), LevelTrace))

	envconfig.Debug = false
	Init()
	require.False(t, slog.Default().Enabled(context.Background(), LevelTrace))
}

func TestTraceOnlyEmitsWhenEnabled(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(NewLogger(&buf, slog.LevelInfo))
	Trace("should not appear")
	require.Empty(t, strings.TrimSpace(buf.String()))

	slog.SetDefault(NewLogger(&buf, LevelTrace))
	Trace("should appear")
	require.Contains(t, buf.String(), "should appear")
}
