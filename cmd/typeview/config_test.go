package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/typeview/pkg/schema"
)

// isolateEnv points HOME at a temp dir and clears every variable loadConfig
// reads. It returns the temp home.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "TYPEVIEW_") || name == "NO_COLOR" {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return home
}

func writeSettings(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".typeview")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(body), 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolateEnv(t)

	cfg := loadConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(home, ".typeview", "typeview.log"), cfg.LogFile)
	assert.Equal(t, "all", cfg.NonInteractiveStages)
	assert.True(t, cfg.ClearOnRender)
	assert.False(t, cfg.ExitOnLastSlide)
	assert.False(t, cfg.NoColor)
	assert.Empty(t, cfg.AutoAdvance)
}

func TestLoadConfig_SettingsFile(t *testing.T) {
	home := isolateEnv(t)
	writeSettings(t, home, `{
		"log_level": "debug",
		"exit_on_last_slide": true,
		"non_interactive_stages": "final",
		"theme": {"title": {"fg": "5", "bold": true}}
	}`)

	cfg := loadConfig()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.ExitOnLastSlide)
	assert.Equal(t, "final", cfg.NonInteractiveStages)
	assert.True(t, cfg.ClearOnRender, "fields missing from the file keep their defaults")
	assert.Equal(t, schema.StyleSpec{Foreground: "5", Bold: true}, cfg.Theme["title"])
}

func TestLoadConfig_BrokenSettingsIgnored(t *testing.T) {
	home := isolateEnv(t)
	writeSettings(t, home, `{not json`)

	assert.Equal(t, "info", loadConfig().LogLevel)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	home := isolateEnv(t)
	writeSettings(t, home, `{"log_level": "debug", "clear_on_render": true}`)

	t.Setenv("TYPEVIEW_LOG_LEVEL", "warn")
	t.Setenv("TYPEVIEW_CLEAR_ON_RENDER", "false")
	t.Setenv("TYPEVIEW_EXIT_ON_LAST_SLIDE", "1")
	t.Setenv("TYPEVIEW_NON_INTERACTIVE_STAGES", "final")
	t.Setenv("TYPEVIEW_AUTO_ADVANCE", "@every 5s")
	t.Setenv("TYPEVIEW_LOG_FILE", "")

	cfg := loadConfig()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.ClearOnRender)
	assert.True(t, cfg.ExitOnLastSlide)
	assert.Equal(t, "final", cfg.NonInteractiveStages)
	assert.Equal(t, "@every 5s", cfg.AutoAdvance)
	assert.Empty(t, cfg.LogFile, "an empty TYPEVIEW_LOG_FILE disables logging")
}

func TestLoadConfig_BadBoolKeepsValue(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TYPEVIEW_CLEAR_ON_RENDER", "sometimes")

	assert.True(t, loadConfig().ClearOnRender)
}

func TestLoadConfig_NoColor(t *testing.T) {
	isolateEnv(t)
	t.Setenv("NO_COLOR", "")

	assert.True(t, loadConfig().NoColor)
}

func TestConfig_PresenterOptions(t *testing.T) {
	isolateEnv(t)
	cfg := loadConfig()
	cfg.ExitOnLastSlide = true
	cfg.ClearOnRender = false
	cfg.NonInteractiveStages = "final"
	cfg.AutoAdvance = "@every 1m"
	cfg.Theme = map[string]schema.StyleSpec{"notice": {Italic: true}}

	opts, err := cfg.presenterOptions()
	require.NoError(t, err)
	assert.True(t, opts.ExitOnLastSlide)
	assert.False(t, opts.ClearOnRender)
	assert.True(t, opts.ShowControls)
	assert.Equal(t, schema.NonInteractiveFinal, opts.NonInteractiveStages)
	assert.Equal(t, "@every 1m", opts.AutoAdvance)
	assert.NotNil(t, opts.Theme.Notice)
	assert.Nil(t, opts.Theme.Title)
}

func TestConfig_PresenterOptionsErrors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"policy", func(c *Config) { c.NonInteractiveStages = "half" }, schema.ErrCodeInvalidArgument},
		{"auto advance", func(c *Config) { c.AutoAdvance = "soon" }, schema.ErrCodeInvalidArgument},
		{"theme region", func(c *Config) { c.Theme = map[string]schema.StyleSpec{"sidebar": {}} }, schema.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfig()
			tt.mutate(&cfg)
			_, err := cfg.presenterOptions()
			require.Error(t, err)
			assert.True(t, schema.HasCode(err, tt.code))
		})
	}
}
