// Package trace records the decisions taken while building a supply graph.
//
// The graph itself only shows what was emitted. The trace explains why: which
// rule classified a node, which owner a regulator was grouped under, which
// supply references failed to resolve and which statements the dedup cache
// suppressed. It is separate from operational logging (slog).
//
// # Basic Usage
//
//	// For development: decisions on the console via slog
//	w.Trace = trace.NewSlogAdapter(slog.Default())
//
//	// For analysis: binary trace file
//	fl, _ := trace.NewFileLogger("board.rtrace")
//	w.Trace = fl
//
//	// Both
//	w.Trace = trace.NewMultiLogger(trace.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Trace files are a sequence of CBOR-encoded events with integer keys, using
// the .rtrace extension. The regviz-trace tool views, summarizes and exports
// them.
package trace
