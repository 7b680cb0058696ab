package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: typeview [command] [flags] <deck>

Commands:
  present <deck>    run the presentation (default)
  render <deck>     print every frame without interaction
  validate <deck>   check a deck file and list its issues
  mcp <deck>        serve the deck to MCP clients over stdio
  init              write ~/.typeview/settings.json
  version           print the version

A deck path of "-" reads the deck from standard input.
`

// errReported marks failures whose details were already printed.
var errReported = errors.New("reported")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    Config
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, cfg: loadConfig()}

	cmd, rest := "present", args
	if len(args) == 0 {
		cmd = "help"
	} else {
		switch args[0] {
		case "present", "render", "validate", "mcp", "init", "version", "help", "-h", "-help", "--help":
			cmd, rest = args[0], args[1:]
		}
	}

	var err error
	switch cmd {
	case "present":
		err = a.runPresent(ctx, rest)
	case "render":
		err = a.runRender(ctx, rest)
	case "validate":
		err = a.runValidate(ctx, rest)
	case "mcp":
		err = a.runMCP(ctx, rest)
	case "init":
		err = a.runInit(rest)
	case "version":
		printVersion(stdout)
	default:
		fmt.Fprint(stdout, usage)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
