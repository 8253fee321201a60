// Command regviz-explore opens an interactive shell on a flattened device
// tree to inspect how regviz classifies nodes and resolves supplies.
//
// Usage:
//
//	regviz-explore <file.dtb>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/regviz/regviz-go/cmd/regviz-explore/interactive"
	"github.com/regviz/regviz-go/pkg/fdt"
	"github.com/regviz/regviz-go/pkg/inspect"
)

func main() {
	fs := flag.NewFlagSet("regviz-explore", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `regviz-explore - interactive device tree supply explorer

Usage:
  regviz-explore <file.dtb>
`)
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	tree, err := fdt.LoadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	shell := interactive.New(inspect.NewInspector(tree))
	if err := shell.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
