package main

import (
	"flag"
	"io"
	"strings"

	"github.com/rendis/typeview/internal/presenter"
	"github.com/rendis/typeview/pkg/schema"
)

// cliFlags are the flags shared by the deck subcommands. Only flags given on
// the command line override config and deck options.
type cliFlags struct {
	logLevel    string
	logFile     string
	stages      string
	autoAdvance string
	exitOnLast  bool
	noClear     bool
	noControls  bool
	noColor     bool

	set map[string]bool
}

// valueFlags take an argument, so reorderArgs keeps it next to its flag.
var valueFlags = map[string]bool{
	"log-level": true, "log-file": true, "stages": true,
	"policy": true, "auto-advance": true,
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFile, "log-file", "", `log file path ("-" for stderr, default: ~/.typeview/typeview.log)`)
	fs.StringVar(&f.stages, "stages", "", "non-interactive stage policy: all or final")
	fs.StringVar(&f.autoAdvance, "auto-advance", "", `advance on a cron schedule, e.g. "@every 30s"`)
	fs.BoolVar(&f.exitOnLast, "exit-on-last", false, "exit when advancing past the last slide")
	fs.BoolVar(&f.noClear, "no-clear", false, "do not clear the screen between frames")
	fs.BoolVar(&f.noControls, "no-controls", false, "hide the controls line")
	fs.BoolVar(&f.noColor, "no-color", false, "disable styling")
	return fs, f
}

// parse parses args, which may mix flags and positional arguments in any
// order.
func (f *cliFlags) parse(fs *flag.FlagSet, args []string) ([]string, error) {
	flags, positional := reorderArgs(args)
	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return append(positional, fs.Args()...), nil
}

// applyConfig overrides logging settings given as flags.
func (f *cliFlags) applyConfig(cfg Config) Config {
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.set["log-file"] {
		cfg.LogFile = f.logFile
	}
	return cfg
}

// applyOptions overrides presenter options given as flags.
func (f *cliFlags) applyOptions(opts presenter.Options) (presenter.Options, error) {
	if f.set["exit-on-last"] {
		opts.ExitOnLastSlide = f.exitOnLast
	}
	if f.set["no-clear"] {
		opts.ClearOnRender = !f.noClear
	}
	if f.set["no-controls"] {
		opts.ShowControls = !f.noControls
	}
	if f.set["no-color"] {
		opts.NoColor = f.noColor
	}
	if f.set["stages"] || f.set["policy"] {
		policy, err := schema.ParseNonInteractivePolicy(f.stages)
		if err != nil {
			return opts, err
		}
		opts.NonInteractiveStages = policy
	}
	if f.set["auto-advance"] {
		opts.AutoAdvance = ""
		return opts.Apply(&schema.PresentationOptions{AutoAdvance: f.autoAdvance})
	}
	return opts, nil
}

// reorderArgs separates flags and positional arguments so flags can appear
// before or after the deck path.
func reorderArgs(args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if !strings.Contains(name, "=") && valueFlags[name] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
			continue
		}
		positional = append(positional, arg)
	}
	return flags, positional
}
