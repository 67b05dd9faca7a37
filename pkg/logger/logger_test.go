package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpkinbots/partbot/pkg/logger"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestNew_CamposDeServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "debug", Service: "partbot", Version: "v1.0.0", Output: &buf})

	comp := l.Component("workflow")
	comp.Info().Msg("hola")

	line := lastLine(t, &buf)
	assert.Equal(t, "partbot", line["service"])
	assert.Equal(t, "v1.0.0", line["version"])
	assert.Equal(t, "workflow", line["component"])
	assert.Equal(t, "hola", line["message"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	l.Info().Msg("oculto")
	assert.Empty(t, buf.String())
	l.Warn().Msg("visible")
	assert.Equal(t, "visible", lastLine(t, &buf)["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestForContext_TraceID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := logger.ContextWithTraceID(context.Background(), " trace-123 ")
	assert.Equal(t, "trace-123", logger.TraceIDFrom(ctx))

	l := logger.ForContext(ctx, base)
	l.Info().Msg("con trace")
	assert.Equal(t, "trace-123", lastLine(t, &buf)["trace_id"])

	plain := logger.ForContext(context.Background(), base)
	plain.Info().Msg("sin trace")
	_, ok := lastLine(t, &buf)["trace_id"]
	assert.False(t, ok)

	assert.Equal(t, context.Background(), logger.ContextWithTraceID(context.Background(), "  "))
}
