// Command regviz prints the regulator supply graph of a flattened device tree
// in Graphviz DOT format.
//
// Usage:
//
//	regviz [flags] <file.dtb> [-hint]
//
// Examples:
//
//	# Render the supply graph of a board
//	regviz board.dtb | dot -Tsvg -o board.svg
//
//	# Include the legend cluster
//	regviz board.dtb -hint
//
//	# Print only the legend
//	regviz -help
//
//	# Record every classification decision
//	regviz -trace board.rtrace board.dtb
package main

import (
	"os"

	"github.com/regviz/regviz-go/cmd/regviz/commands"
)

func main() {
	os.Exit(commands.RunGraph(os.Args[1:], os.Stdout, os.Stderr))
}
