package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, "midnight", cfg.UI.Theme)
	assert.Equal(t, time.Second, cfg.UI.WelcomeDelay)
	assert.Equal(t, ":5000", cfg.Mock.Addr)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvTheme, "meadow")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "api:\n  base_url: http://pdf.internal:8080/\nui:\n  theme: midnight\n  welcome_delay: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://pdf.internal:8080", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "meadow", cfg.UI.Theme, "env wins over file")
	assert.Equal(t, 250*time.Millisecond, cfg.UI.WelcomeDelay)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.UI.Theme = "meadow"
	require.NoError(t, cfg.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "meadow", again.UI.Theme)
}
