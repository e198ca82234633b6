package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "json", config.Format)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		level  zapcore.Level
	}{
		{"nil config uses defaults", nil, zapcore.InfoLevel},
		{"json debug", &Config{Level: "debug", Format: "json"}, zapcore.DebugLevel},
		{"console warn", &Config{Level: "warn", Format: "console"}, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, log)

			assert.True(t, log.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestBuildConfig(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := BuildConfig(&Config{Level: "error", Format: "json"})

		assert.Equal(t, "json", cfg.Encoding)
		assert.Equal(t, "time", cfg.EncoderConfig.TimeKey)
		assert.Equal(t, "msg", cfg.EncoderConfig.MessageKey)
		assert.Equal(t, zapcore.ErrorLevel, cfg.Level.Level())
	})

	t.Run("console", func(t *testing.T) {
		cfg := BuildConfig(&Config{Level: "debug", Format: "console"})

		assert.Equal(t, "console", cfg.Encoding)
		assert.True(t, cfg.Development)
		assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"invalid", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.level))
		})
	}
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(nil) })
}
