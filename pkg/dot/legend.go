package dot

import (
	"io"
	"strings"
)

// Legend returns the hint cluster explaining node shapes and colors.
func Legend(s Style) string {
	var b strings.Builder
	b.WriteString("subgraph cluster_hint {\n")
	b.WriteString(nodeStatement("User Device", "box", s.DeviceFill))
	b.WriteString(nodeStatement("in-Device Regulator", "box", s.InlineFill))
	for _, r := range s.Shapes {
		b.WriteString(nodeStatement(r.Compatible, r.Shape, s.RegulatorFill))
	}
	b.WriteString(nodeStatement("other type regulator", s.DefaultShape, s.RegulatorFill))
	b.WriteString("style=filled;\ncolor=" + s.LegendColor + ";\nlabel = \"Hints\";\n}\n")
	return b.String()
}

// WriteHelp writes a standalone graph containing only the legend.
func WriteHelp(w io.Writer, s Style) error {
	_, err := io.WriteString(w, "digraph G {\n"+Legend(s)+"}\n")
	return err
}
