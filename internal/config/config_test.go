package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbi-app/symbi/internal/model"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Thresholds.Low)
	assert.Equal(t, 8000, cfg.Thresholds.High)
	assert.Equal(t, 30, cfg.Evolution.RequiredDays)

	timeout, err := cfg.GenerationTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
thresholds:
  low: 3000
  high: 10000
evolution:
  required_days: 14
  positive_states: [active, calm]
  generation_timeout: 10s
gemini:
  image_model: imagen-test
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Thresholds.Low)
	assert.Equal(t, 14, cfg.Evolution.RequiredDays)
	assert.Equal(t, "imagen-test", cfg.Gemini.ImageModel)

	set := cfg.PositiveSet()
	assert.True(t, set[model.StateActive])
	assert.True(t, set[model.StateCalm])
	assert.False(t, set[model.StateVibrant])

	timeout, err := cfg.GenerationTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"inverted thresholds", "thresholds: {low: 9000, high: 2000}"},
		{"zero required days", "evolution: {required_days: -1}"},
		{"unknown positive state", "evolution: {positive_states: [grumpy]}"},
		{"bad timeout", "evolution: {generation_timeout: soon}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(c.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini: {api_key: file-key}"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
}

func TestPositiveSetEmptyMeansDefaults(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.PositiveSet())
}
