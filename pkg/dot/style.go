package dot

import "strconv"

// ShapeRule maps an exact compatible string to a node shape.
type ShapeRule struct {
	Compatible string
	Shape      string
}

// Style holds every visual attribute of the emitted graph.
type Style struct {
	// GraphName is the identifier after "digraph".
	GraphName string

	// Shapes is matched in order against a regulator's compatible string.
	Shapes []ShapeRule

	// DefaultShape is used when no ShapeRule matches.
	DefaultShape string

	RegulatorFill string
	InlineFill    string
	InputFill     string
	DeviceFill    string

	ClusterColor string
	LegendColor  string

	SupplyEdgeStyle  string
	CoupledEdgeStyle string

	RankSep float64
	NodeSep float64
	Splines string
}

// DefaultStyle returns the standard regviz look.
func DefaultStyle() Style {
	return Style{
		GraphName: "regulators",
		Shapes: []ShapeRule{
			{Compatible: "regulator-fixed", Shape: "ellipse"},
			{Compatible: "regulator-gpio", Shape: "box"},
			{Compatible: "pwm-regulator", Shape: "octagon"},
		},
		DefaultShape:     "hexagon",
		RegulatorFill:    "lightblue",
		InlineFill:       "lightgreen",
		InputFill:        "lightgreen",
		DeviceFill:       "orange",
		ClusterColor:     "lightgrey",
		LegendColor:      "cyan",
		SupplyEdgeStyle:  "bold",
		CoupledEdgeStyle: "dashed",
		RankSep:          1.5,
		NodeSep:          0.1,
		Splines:          "true",
	}
}

// Shape returns the node shape for a compatible string.
func (s Style) Shape(compatible string) string {
	for _, r := range s.Shapes {
		if r.Compatible == compatible {
			return r.Shape
		}
	}
	return s.DefaultShape
}

func (s Style) layout() string {
	return "ranksep=" + strconv.FormatFloat(s.RankSep, 'f', -1, 64) + ";\n" +
		"nodesep=" + strconv.FormatFloat(s.NodeSep, 'f', -1, 64) + ";\n" +
		"splines=" + s.Splines + ";\n"
}
