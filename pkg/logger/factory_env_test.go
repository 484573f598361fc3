package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"log/slog"

	"github.com/dmitrymomot/reliablemail/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDevelopment(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithDevelopment("svc"),
		logger.WithOutput(buf),
	)
	require.NotNil(t, log)
	log.Debug("msg")
	output := buf.String()
	assert.Contains(t, output, "DEBUG")
	assert.Contains(t, output, "service=svc")
}

func TestWithProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithProduction("svc"),
		logger.WithOutput(buf),
	)
	require.NotNil(t, log)
	log.Info("msg")
	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err)
	assert.Equal(t, "svc", entry["service"])
}

func TestWithEnvironment(t *testing.T) {
	for env, want := range map[string]string{
		"prod":                logger.EnvProduction,
		logger.EnvProduction:  logger.EnvProduction,
		"stage":               logger.EnvStaging,
		logger.EnvStaging:     logger.EnvStaging,
		"":                    logger.EnvDevelopment,
		"anything-else":       logger.EnvDevelopment,
		logger.EnvDevelopment: logger.EnvDevelopment,
	} {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment(env, "svc"),
			logger.WithFormat(logger.FormatJSON),
			logger.WithOutput(buf),
		)
		log.Info("msg")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), env)
		assert.Equal(t, want, entry["env"], env)
	}
}

func TestWithEnvironment_EmptyServiceIgnored(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.WithDevelopment(""), logger.WithOutput(buf))
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestWithExtractors(t *testing.T) {
	buf := &bytes.Buffer{}
	type key string
	k := key("id")
	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v := ctx.Value(k); v != nil {
			return slog.String("id", v.(string)), true
		}
		return slog.Attr{}, false
	}
	log := logger.WithExtractors(logger.New(
		logger.WithProduction("svc"),
		logger.WithOutput(buf),
	), extractor)
	ctx := context.WithValue(context.Background(), k, "123")
	log.InfoContext(ctx, "msg")
	var entry map[string]any
	err := json.Unmarshal(buf.Bytes(), &entry)
	require.NoError(t, err)
	assert.Equal(t, "123", entry["id"])

	t.Run("survives With and WithGroup", func(t *testing.T) {
		buf.Reset()
		log.With(slog.String("component", "queue")).WithGroup("job").InfoContext(ctx, "msg", slog.String("state", "done"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "queue", entry["component"])
		group, ok := entry["job"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "done", group["state"])
		assert.Equal(t, "123", group["id"])
	})

	t.Run("context without values adds nothing", func(t *testing.T) {
		buf.Reset()
		log.InfoContext(context.Background(), "msg")
		assert.NotContains(t, buf.String(), `"id"`)
	})
}

func TestWithExtractors_NilLogger(t *testing.T) {
	log := logger.WithExtractors(nil)
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.InfoContext(context.Background(), "dropped") })
}

func TestWithExtractorsOnExistingLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	type key string
	first, second := key("first"), key("second")
	extract := func(k key) logger.ContextExtractor {
		return func(ctx context.Context) (slog.Attr, bool) {
			if v, ok := ctx.Value(k).(string); ok {
				return slog.String(string(k), v), true
			}
			return slog.Attr{}, false
		}
	}

	base := logger.WithExtractors(logger.New(
		logger.WithProduction("svc"),
		logger.WithOutput(buf),
	), extract(first))
	log := logger.WithExtractors(base, extract(second), nil)

	ctx := context.WithValue(context.Background(), first, "a")
	ctx = context.WithValue(ctx, second, "b")
	log.InfoContext(ctx, "msg")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a", entry["first"])
	assert.Equal(t, "b", entry["second"])
	assert.Equal(t, 1, strings.Count(buf.String(), `"first"`))
}
