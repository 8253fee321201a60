// Command regviz-trace views and analyzes regviz decision trace files.
//
// Trace files are written by regviz with the -trace flag.
//
// Usage:
//
//	regviz-trace <command> [flags] <file.rtrace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all decisions
//	regviz-trace view board.rtrace
//
//	# View only unresolved supplies
//	regviz-trace view -kind supply_unresolved board.rtrace
//
//	# View decisions below one node
//	regviz-trace view -path /soc/i2c@1000 board.rtrace
//
//	# Export to CSV
//	regviz-trace export -format csv -o board.csv board.rtrace
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/regviz/regviz-go/cmd/regviz-trace/commands"
	"github.com/regviz/regviz-go/pkg/trace"
)

const usage = `regviz-trace - regviz decision trace analyzer

Usage:
  regviz-trace <command> [flags] <file.rtrace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "regviz-trace <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func kindHelp() string {
	names := make([]string, 0, len(trace.Kinds()))
	for _, k := range trace.Kinds() {
		names = append(names, strings.ToLower(k.String()))
	}
	return "Filter by kind (" + strings.Join(names, ", ") + ")"
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `regviz-trace view - View trace file in human-readable format

Usage:
  regviz-trace view [flags] <file.rtrace>

Flags:
`)
		fs.PrintDefaults()
	}

	kind := fs.String("kind", "", kindHelp())
	pathPrefix := fs.String("path", "", "Filter by node path prefix")
	runID := fs.String("run", "", "Filter by run ID")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter, err := commands.BuildFilter(commands.FilterOptions{
		Kind:       *kind,
		PathPrefix: *pathPrefix,
		RunID:      *runID,
	})
	if err != nil {
		fail(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `regviz-trace export - Export trace file to JSONL or CSV format

Usage:
  regviz-trace export [flags] <file.rtrace>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output, os.Stdout); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `regviz-trace filter - Filter trace file and write to new file

Usage:
  regviz-trace filter [flags] <file.rtrace>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	kind := fs.String("kind", "", kindHelp())
	pathPrefix := fs.String("path", "", "Filter by node path prefix")
	runID := fs.String("run", "", "Filter by run ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:     *output,
		Kind:       *kind,
		PathPrefix: *pathPrefix,
		RunID:      *runID,
		TimeStart:  *timeStart,
		TimeEnd:    *timeEnd,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `regviz-trace stats - Show statistics about the trace file

Usage:
  regviz-trace stats <file.rtrace>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
