package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rendis/typeview/internal/presenter"
	"github.com/rendis/typeview/pkg/schema"
)

// Config holds the user's typeview settings.
// Priority: flags > deck options > env vars > settings.json > defaults.
type Config struct {
	LogLevel             string                      `json:"log_level"`
	LogFile              string                      `json:"log_file"`
	NonInteractiveStages string                      `json:"non_interactive_stages"`
	ExitOnLastSlide      bool                        `json:"exit_on_last_slide"`
	ClearOnRender        bool                        `json:"clear_on_render"`
	NoColor              bool                        `json:"no_color"`
	AutoAdvance          string                      `json:"auto_advance,omitempty"`
	Theme                map[string]schema.StyleSpec `json:"theme,omitempty"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:             "info",
		LogFile:              filepath.Join(typeviewDir(), "typeview.log"),
		NonInteractiveStages: string(schema.NonInteractiveAll),
		ClearOnRender:        true,
	}
}

func typeviewDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".typeview"
	}
	return filepath.Join(home, ".typeview")
}

func settingsPath() string {
	return filepath.Join(typeviewDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("TYPEVIEW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("TYPEVIEW_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v := os.Getenv("TYPEVIEW_NON_INTERACTIVE_STAGES"); v != "" {
		cfg.NonInteractiveStages = v
	}
	if v := os.Getenv("TYPEVIEW_EXIT_ON_LAST_SLIDE"); v != "" {
		cfg.ExitOnLastSlide = envBool(v, cfg.ExitOnLastSlide)
	}
	if v := os.Getenv("TYPEVIEW_CLEAR_ON_RENDER"); v != "" {
		cfg.ClearOnRender = envBool(v, cfg.ClearOnRender)
	}
	if v := os.Getenv("TYPEVIEW_AUTO_ADVANCE"); v != "" {
		cfg.AutoAdvance = v
	}
	if v := os.Getenv("TYPEVIEW_NO_COLOR"); v != "" {
		cfg.NoColor = envBool(v, cfg.NoColor)
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}

	return cfg
}

func envBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// presenterOptions layers the config over the presenter defaults.
func (c Config) presenterOptions() (presenter.Options, error) {
	opts := presenter.DefaultOptions()
	opts.ClearOnRender = c.ClearOnRender
	opts.ExitOnLastSlide = c.ExitOnLastSlide
	opts.NoColor = c.NoColor

	policy, err := schema.ParseNonInteractivePolicy(c.NonInteractiveStages)
	if err != nil {
		return opts, err
	}
	opts.NonInteractiveStages = policy

	if opts, err = opts.Apply(&schema.PresentationOptions{AutoAdvance: c.AutoAdvance}); err != nil {
		return opts, err
	}
	return opts.WithThemeSpec(c.Theme)
}
