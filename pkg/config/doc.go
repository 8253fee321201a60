// Package config loads regviz settings from YAML.
//
// A file only needs the fields it changes; everything else keeps its default.
// Loaded files are checked against an embedded CUE schema, so an unknown
// shape, a malformed color or a stray key fails before any output is written.
//
//	graph:
//	  name: regulators
//	dedup:
//	  capacity: 4096
//	shapes:
//	  default: hexagon
//	  rules:
//	    - compatible: regulator-fixed
//	      shape: ellipse
//	colors:
//	  device: orange
package config
