package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	content := `parameters:
  mailer.transport: sendmail
  mailer.port: 25
  mailer.debug: true
  mailer.hosts:
    - a.example.com
    - b.example.com
  mailer.options:
    timeout: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	params, err := LoadParameters(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"mailer.transport": "sendmail",
		"mailer.port":      25,
		"mailer.debug":     true,
		"mailer.hosts":     []any{"a.example.com", "b.example.com"},
		"mailer.options":   map[string]any{"timeout": 30},
	}, params)
}

func TestLoadParameters_MissingFile(t *testing.T) {
	params, err := LoadParameters(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestLoadParameters_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("other: 1\n"), 0o600))

	params, err := LoadParameters(path)
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestLoadParameters_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parameters: [unclosed\n"), 0o600))

	_, err := LoadParameters(path)
	assert.Error(t, err)
}

func TestLoadParameters_NonStringKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.yaml")
	content := `parameters:
  mailer.retries:
    1: 10s
    2: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	params, err := LoadParameters(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "10s", "2": "1m"}, params["mailer.retries"])
}

func TestParameterValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	t.Run("timestamps become strings", func(t *testing.T) {
		v, err := parameterValue("released", []any{ts})
		require.NoError(t, err)
		assert.Equal(t, []any{"2024-03-01T12:30:00Z"}, v)
	})

	t.Run("unsupported type names the key", func(t *testing.T) {
		_, err := parameterValue("mailer", map[string]any{
			"hosts": []any{"a.example.com", struct{}{}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"mailer.hosts[1]"`)
	})

	t.Run("colliding formatted keys", func(t *testing.T) {
		_, err := parameterValue("ports", map[any]any{1: "a", "1": "b"})
		assert.ErrorContains(t, err, `key "1"`)
	})
}
