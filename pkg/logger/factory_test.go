package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"log/slog"

	"github.com/dmitrymomot/reliablemail/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")
		var entry map[string]any
		err := json.Unmarshal(buf.Bytes(), &entry)
		require.NoError(t, err)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat(logger.FormatText),
		)
		log.Info("hello")
		out := buf.String()
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, "msg=hello")
	})

	t.Run("level filters records", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithLevel(slog.LevelWarn),
		)
		log.Info("hidden")
		assert.Empty(t, buf.String())
		log.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("nil output keeps default", func(t *testing.T) {
		assert.NotPanics(t, func() {
			logger.New(logger.WithOutput(nil), logger.WithLevel(slog.LevelError)).Debug("dropped")
		})
	})
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logger.ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := logger.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestWithConfig(t *testing.T) {
	t.Run("environment defaults", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithConfig(logger.Config{AppEnv: logger.EnvProduction}, "remail"),
			logger.WithOutput(buf),
		)
		log.Debug("hidden")
		log.Info("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "remail", entry["service"])
		assert.Equal(t, logger.EnvProduction, entry["env"])
	})

	t.Run("explicit overrides", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithConfig(logger.Config{AppEnv: logger.EnvProduction, Level: "debug", Format: "TEXT"}, "remail"),
			logger.WithOutput(buf),
		)
		log.Debug("verbose")
		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "msg=verbose")
	})

	t.Run("invalid level panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithConfig(logger.Config{Level: "loud"}, "remail"))
		})
	})
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("nothing") })
}
