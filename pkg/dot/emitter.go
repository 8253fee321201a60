package dot

import (
	"fmt"
	"io"
	"strings"
)

// Outcome reports what happened to a statement.
type Outcome uint8

const (
	// Written means the statement was written and its fingerprint recorded.
	Written Outcome = iota
	// Unrecorded means the statement was written but the cache was full.
	Unrecorded
	// Duplicate means the statement was already written and was dropped.
	Duplicate
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case Unrecorded:
		return "unrecorded"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Stats counts statement outcomes.
type Stats struct {
	Written    int
	Unrecorded int
	Duplicates int
}

// Emitter formats statements and writes those not seen before.
// The first write error is kept and all later writes are skipped.
type Emitter struct {
	w     io.Writer
	style Style
	cache *Cache
	stats Stats
	err   error
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer, style Style, cache *Cache) *Emitter {
	return &Emitter{w: w, style: style, cache: cache}
}

// Err returns the first write error.
func (e *Emitter) Err() error {
	return e.err
}

// Stats returns the outcome counters.
func (e *Emitter) Stats() Stats {
	return e.stats
}

// Style returns the emitter style.
func (e *Emitter) Style() Style {
	return e.style
}

func (e *Emitter) write(s string) {
	if e.err != nil {
		return
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = fmt.Errorf("writing graph: %w", err)
	}
}

// statement writes s unless its fingerprint was recorded before.
func (e *Emitter) statement(s string) Outcome {
	fp := FingerprintOf(s)
	if e.cache.Seen(fp) {
		e.stats.Duplicates++
		return Duplicate
	}
	e.write(s)
	if !e.cache.Add(fp) {
		e.stats.Unrecorded++
		return Unrecorded
	}
	e.stats.Written++
	return Written
}

func nodeStatement(label, shape, fill string) string {
	return fmt.Sprintf("\"%s\" [shape=%s, fillcolor=%s, style=filled];\n", label, shape, fill)
}

func edgeStatement(from, to, style, label string) string {
	return fmt.Sprintf("\"%s\" -> \"%s\" [style=%s, label=\"%s\"];\n", from, to, style, label)
}

func clusterBlock(id, label, color string, body ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "subgraph cluster_%s {\nstyle=filled;\ncolor=%s;\nlabel = \"%s\";\n", Sanitize(id), color, label)
	for _, s := range body {
		b.WriteString(s)
	}
	b.WriteString("}\n")
	return b.String()
}

// InputMarker returns the label of the input marker node of an owner device.
func InputMarker(owner string) string {
	return owner + ":Input"
}

// RegulatorNode writes the node of a regulator with a compatible string.
func (e *Emitter) RegulatorNode(label, compatible string) Outcome {
	return e.statement(nodeStatement(label, e.style.Shape(compatible), e.style.RegulatorFill))
}

// InlineRegulatorCluster writes the cluster grouping an inline regulator
// under its owner device, with the owner's input marker.
func (e *Emitter) InlineRegulatorCluster(owner, label string) Outcome {
	return e.statement(clusterBlock(owner, owner, e.style.ClusterColor,
		nodeStatement(InputMarker(owner), "diamond", e.style.InputFill),
		nodeStatement(label, "box", e.style.InlineFill),
	))
}

// DeviceCluster writes the cluster of a supply consumer device.
func (e *Emitter) DeviceCluster(device string) Outcome {
	return e.statement(clusterBlock(device, device, e.style.ClusterColor,
		nodeStatement(device, "box", e.style.DeviceFill),
	))
}

// SupplyEdge writes a supply edge from a source regulator to a consumer.
func (e *Emitter) SupplyEdge(from, to string) Outcome {
	return e.statement(edgeStatement(from, to, e.style.SupplyEdgeStyle, "supply"))
}

// CoupledEdge writes a coupling edge between two regulators.
func (e *Emitter) CoupledEdge(from, to string) Outcome {
	return e.statement(edgeStatement(from, to, e.style.CoupledEdgeStyle, "coupled"))
}

// FirstDevice reports whether device has not been seen yet and marks it seen.
// Device names share the statement cache. When the cache is full an unseen
// name is reported as first on every call.
func (e *Emitter) FirstDevice(device string) bool {
	fp := FingerprintOf(device)
	if e.cache.Seen(fp) {
		return false
	}
	e.cache.Add(fp)
	return true
}

// MarkDevice marks device as seen.
func (e *Emitter) MarkDevice(device string) {
	e.cache.Add(FingerprintOf(device))
}

// Title returns the graph title for a model string.
func Title(model string, ok bool) string {
	if !ok {
		return "Unknown"
	}
	return Sanitize(model)
}

// Begin writes the graph header: the opening line, the legend when hint is
// set, layout hints and the title.
func (e *Emitter) Begin(title string, hint bool) {
	e.write("digraph " + e.style.GraphName + " {\n")
	if hint {
		e.write(Legend(e.style))
	}
	e.write(e.style.layout())
	e.write("labelloc=\"t\";\nlabel=\"" + title + "\";\n")
}

// End closes the graph.
func (e *Emitter) End() {
	e.write("}\n")
}
