package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/typeview/internal/logging"
)

// runInit writes the current configuration, with any flags applied, to
// settings.json.
func (a *app) runInit(args []string) error {
	fs, f := newFlagSet("init", a.stderr)
	positional, err := f.parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("init takes no arguments, got %q", positional)
	}

	cfg := f.applyConfig(a.cfg)
	if f.set["exit-on-last"] {
		cfg.ExitOnLastSlide = f.exitOnLast
	}
	if f.set["no-clear"] {
		cfg.ClearOnRender = !f.noClear
	}
	if f.set["no-color"] {
		cfg.NoColor = f.noColor
	}
	if f.set["stages"] {
		cfg.NonInteractiveStages = f.stages
	}
	if f.set["auto-advance"] {
		cfg.AutoAdvance = f.autoAdvance
	}
	if err := checkConfig(cfg); err != nil {
		return err
	}

	dir := typeviewDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	path := settingsPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	fmt.Fprintf(a.stdout, "Config written to %s\n", path)
	return nil
}

// checkConfig rejects values that would fail every later run.
func checkConfig(cfg Config) error {
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if _, err := cfg.presenterOptions(); err != nil {
		return err
	}
	if cfg.LogFile != "" && cfg.LogFile != "-" && !filepath.IsAbs(cfg.LogFile) {
		return fmt.Errorf("log_file must be an absolute path, got %q", cfg.LogFile)
	}
	return nil
}
