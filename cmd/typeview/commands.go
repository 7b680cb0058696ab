package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rendis/typeview/internal/deck"
	"github.com/rendis/typeview/internal/engine"
	"github.com/rendis/typeview/internal/expressions"
	"github.com/rendis/typeview/internal/logging"
	"github.com/rendis/typeview/internal/presenter"
	"github.com/rendis/typeview/internal/scheduler"
	"github.com/rendis/typeview/internal/terminal"
	"github.com/rendis/typeview/pkg/mcp"
	"github.com/rendis/typeview/pkg/schema"
)

// deckCommand is the shared setup of the subcommands that open a deck.
type deckCommand struct {
	flags  *cliFlags
	path   string
	logger *slog.Logger
	loader *deck.Loader
	close  func()
}

func (a *app) openDeckCommand(fs *flag.FlagSet, f *cliFlags, args []string) (*deckCommand, error) {
	positional, err := f.parse(fs, args)
	if err != nil {
		return nil, err
	}
	if len(positional) != 1 {
		fmt.Fprintf(a.stderr, "Usage: typeview %s [flags] <deck>\n", fs.Name())
		fs.PrintDefaults()
		return nil, errReported
	}

	cfg := f.applyConfig(a.cfg)
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := logging.Setup(cfg.LogFile, level)
	if err != nil {
		return nil, err
	}

	registry, err := expressions.NewRegistry()
	if err != nil {
		cleanup()
		return nil, err
	}
	loader, err := deck.NewLoader(registry, scheduler.Validate, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &deckCommand{
		flags:  f,
		path:   positional[0],
		logger: logger,
		loader: loader,
		close:  cleanup,
	}, nil
}

// load reads and builds the deck, then resolves the presenter options:
// config, then deck options, then flags.
func (a *app) load(ctx context.Context, dc *deckCommand) (*engine.Navigator, presenter.Options, error) {
	d, err := dc.loader.Load(ctx, dc.path)
	if err != nil {
		return nil, presenter.Options{}, err
	}
	for _, w := range d.Warnings {
		attrs := []any{
			slog.String("path", w.Path),
			slog.String("code", w.Code),
			slog.String("message", w.Message),
		}
		if w.Slide != nil {
			attrs = append(attrs, slog.Int("slide", w.Slide.Index), slog.String("slide_title", w.Slide.Title))
		}
		dc.logger.WarnContext(ctx, "deck warning", attrs...)
	}

	nav := engine.NewNavigator()
	for _, s := range d.Slides {
		if err := nav.AddSlide(s); err != nil {
			return nil, presenter.Options{}, err
		}
	}

	opts, err := a.cfg.presenterOptions()
	if err != nil {
		return nil, opts, err
	}
	def := d.Definition
	opts.Title, opts.Header, opts.Footer = def.Title, def.Header, def.Footer
	if opts, err = opts.Apply(def.Options); err != nil {
		return nil, opts, err
	}
	if opts, err = opts.WithThemeSpec(def.Theme); err != nil {
		return nil, opts, err
	}
	opts, err = dc.flags.applyOptions(opts)
	return nav, opts, err
}

func (a *app) runPresent(ctx context.Context, args []string) error {
	fs, f := newFlagSet("present", a.stderr)
	dc, err := a.openDeckCommand(fs, f, args)
	if err != nil {
		return err
	}
	defer dc.close()

	nav, opts, err := a.load(ctx, dc)
	if err != nil {
		return err
	}
	term := terminal.New(a.stdin, a.stdout)
	if w, h, err := term.Size(); err == nil {
		dc.logger.DebugContext(ctx, "terminal detected", slog.Int("width", w), slog.Int("height", h))
	}
	return presenter.New(nav, term, opts, dc.logger).Run(ctx)
}

func (a *app) runRender(ctx context.Context, args []string) error {
	fs, f := newFlagSet("render", a.stderr)
	fs.StringVar(&f.stages, "policy", "", "stage policy: all or final")
	dc, err := a.openDeckCommand(fs, f, args)
	if err != nil {
		return err
	}
	defer dc.close()

	nav, opts, err := a.load(ctx, dc)
	if err != nil {
		return err
	}
	// No key source: the presenter falls back to auto-play.
	term := terminal.New(strings.NewReader(""), a.stdout)
	return presenter.New(nav, term, opts, dc.logger).Run(ctx)
}

func (a *app) runValidate(ctx context.Context, args []string) error {
	fs, f := newFlagSet("validate", a.stderr)
	dc, err := a.openDeckCommand(fs, f, args)
	if err != nil {
		return err
	}
	defer dc.close()

	data, err := deck.Read(dc.path)
	if err != nil {
		return err
	}
	def, result, err := dc.loader.Decode(data, deck.FormatFromPath(dc.path))
	if result != nil {
		printIssues(a, result)
	}
	if err == nil {
		_, err = dc.loader.Build(ctx, def)
	}
	if err != nil {
		if result != nil && !result.Valid() {
			return errReported
		}
		return err
	}

	fmt.Fprintf(a.stdout, "%s: ok (%d slides, %d warnings)\n", dc.path, len(def.Slides), len(result.Warnings))
	return nil
}

func printIssues(a *app, result *schema.ValidationResult) {
	for _, issue := range result.Errors {
		fmt.Fprintf(a.stderr, "error   %s\n", issue)
	}
	for _, issue := range result.Warnings {
		fmt.Fprintf(a.stdout, "warning %s\n", issue)
	}
}

func (a *app) runMCP(ctx context.Context, args []string) error {
	fs, f := newFlagSet("mcp", a.stderr)
	dc, err := a.openDeckCommand(fs, f, args)
	if err != nil {
		return err
	}
	defer dc.close()

	nav, opts, err := a.load(ctx, dc)
	if err != nil {
		return err
	}
	srv := mcp.NewTypeviewServer(mcp.TypeviewServerDeps{
		Navigator: nav,
		Title:     opts.Title,
		Version:   version,
		Policy:    opts.NonInteractiveStages,
		Logger:    dc.logger,
	})
	dc.logger.InfoContext(ctx, "mcp server listening on stdio", slog.Int("slides", nav.Len()))
	return srv.Serve(ctx)
}
