// Package inspect looks up device tree nodes and describes their role in the
// supply graph.
//
// The inspect package offers:
//   - Parsing path expressions ("/soc/i2c@1000", "../pmic", "&vdd_core")
//   - Resolving aliases and symbol labels to nodes
//   - Reporting properties, supplies, consumers and owners of a node
//   - Formatting reports for display
package inspect

import (
	"errors"
	"path"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// Path is a parsed node reference.
type Path struct {
	// Label is set for "&label" references to /__symbols__ entries.
	Label string

	// Alias is set when the first segment of a relative path may be an
	// /aliases entry.
	Alias string

	// Rest is the remainder after Alias, without a leading slash.
	Rest string

	// Node is the node path for absolute and relative references.
	Node string

	// Absolute is set for paths starting with "/".
	Absolute bool

	// Raw stores the original input.
	Raw string
}

// ParsePath parses a node reference.
//
// Supported formats:
//   - "/soc/i2c@1000" - absolute path
//   - "pmic@48/regulators", "..", "." - relative to the current node
//   - "&vdd_core" - symbol label
//   - "mmc0/card" - alias followed by a relative path, tried before the
//     relative interpretation
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}
	if strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	p := &Path{Raw: input}

	if label, ok := strings.CutPrefix(input, "&"); ok {
		if label == "" || strings.Contains(label, "/") {
			return nil, ErrInvalidPath
		}
		p.Label = label
		return p, nil
	}

	if strings.HasPrefix(input, "/") {
		p.Absolute = true
		p.Node = path.Clean(input)
		return p, nil
	}

	p.Node = input
	first, rest, _ := strings.Cut(input, "/")
	if first != "." && first != ".." {
		p.Alias = first
		p.Rest = rest
	}
	return p, nil
}

// Join resolves p against the absolute path cwd.
// Label and alias references are not handled here.
func Join(cwd string, p *Path) string {
	if p.Absolute {
		return p.Node
	}
	if cwd == "" {
		cwd = "/"
	}
	return path.Clean(path.Join(cwd, p.Node))
}

// String returns the path as written.
func (p *Path) String() string {
	if p.Label != "" {
		return "&" + p.Label
	}
	return p.Node
}
