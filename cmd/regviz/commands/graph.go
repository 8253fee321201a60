// Package commands implements the regviz CLI.
package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/regviz/regviz-go/pkg/config"
	"github.com/regviz/regviz-go/pkg/dot"
	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/regulator"
	"github.com/regviz/regviz-go/pkg/trace"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

// Version is the regviz release.
const Version = "0.1.0"

// GraphOptions configures the graph command.
type GraphOptions struct {
	Path       string
	Hint       bool
	ConfigPath string
	LogLevel   slog.Level
	TracePath  string
	Version    bool
}

// RunGraph runs regviz and returns the process exit code.
func RunGraph(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && isHelp(args[0]) {
		return runHelp(stdout, stderr)
	}

	opts, err := parseGraphArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.Version {
		fmt.Fprintf(stdout, "regviz version %s\n", Version)
		return exitSuccess
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.LogLevel}))
	if err := renderGraph(opts, stdout, logger); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "-help" || arg == "--help"
}

func runHelp(stdout, stderr io.Writer) int {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if err := dot.WriteHelp(stdout, cfg.Style()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func parseGraphArgs(args []string, stderr io.Writer) (*GraphOptions, error) {
	fs := flag.NewFlagSet("regviz", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printGraphUsage(stderr) }

	opts := &GraphOptions{}
	fs.BoolVar(&opts.Hint, "hint", false, "Include the legend cluster")
	fs.StringVar(&opts.ConfigPath, "config", "", "Configuration file (default: search regviz.yaml)")
	level := fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.TracePath, "trace", "", "Write the decision trace to this file")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Version {
		return opts, nil
	}

	if err := opts.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", *level)
	}

	positional := fs.Args()
	if len(positional) == 2 && (positional[1] == "-hint" || positional[1] == "--hint") {
		opts.Hint = true
		positional = positional[:1]
	}
	if len(positional) != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected one device tree blob, got %d arguments", len(positional))
	}
	opts.Path = positional[0]
	return opts, nil
}

func printGraphUsage(w io.Writer) {
	fmt.Fprint(w, `regviz - regulator supply graph from a flattened device tree

Usage:
  regviz [flags] <file.dtb> [-hint]
  regviz -help

Flags:
  -hint             Include the legend cluster
  -config <file>    Configuration file (default: search regviz.yaml)
  -log-level <lvl>  Log level: debug, info, warn, error (default: warn)
  -trace <file>     Write the decision trace to this file
  -version          Print the version and exit
`)
}

// renderGraph loads the tree before anything is written, so a bad blob
// leaves stdout empty.
func renderGraph(opts *GraphOptions, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	tree, err := fdt.LoadFile(opts.Path)
	if err != nil {
		return err
	}
	logger.Info("loaded device tree", "path", opts.Path, "nodes", tree.Len())

	runID := uuid.NewString()
	var fileLogger trace.Logger
	if opts.TracePath != "" {
		fl, err := trace.NewFileLogger(opts.TracePath)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing trace file", "error", err)
			}
		}()
		fileLogger = fl
	}

	out := bufio.NewWriter(stdout)
	emitter := dot.NewEmitter(out, cfg.Style(), dot.NewCache(cfg.Dedup.Capacity))

	walker := regulator.NewWalker(tree, emitter)
	walker.MaxClimb = cfg.Owner.MaxClimb
	walker.RunID = runID
	walker.Trace = trace.NewMultiLogger(fileLogger, trace.NewSlogAdapter(logger))

	model, ok := tree.Root().StringProperty("model")
	emitter.Begin(dot.Title(model, ok), opts.Hint || cfg.Graph.Hint)
	summary := walker.Walk()
	emitter.End()

	if err := emitter.Err(); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}

	logger.Info("graph written",
		"run_id", runID,
		"nodes", summary.Nodes,
		"regulators", summary.Regulators,
		"consumers", summary.Consumers,
		"suppressed", summary.Suppressed,
		"statements", summary.Statements.Written,
		"duplicates", summary.Statements.Duplicates,
	)
	if summary.Statements.Unrecorded > 0 {
		logger.Warn("dedup cache full, later statements may repeat",
			"capacity", cfg.Dedup.Capacity,
			"unrecorded", summary.Statements.Unrecorded,
		)
	}
	return nil
}
