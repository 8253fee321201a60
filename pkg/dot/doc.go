// Package dot writes Graphviz DOT text for a regulator supply graph.
//
// Statements are fingerprinted and written at most once per run while the
// dedup Cache has room. Once the cache is full, novel statements are still
// written but no longer recorded, so duplicates may appear. That is a soft
// failure, not an error.
//
// Cluster identifiers go through Sanitize. Quoted labels are written as is.
package dot
