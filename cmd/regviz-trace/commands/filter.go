// Package commands implements the regviz-trace CLI commands.
package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/regviz/regviz-go/pkg/trace"
)

// FilterOptions specifies filtering criteria.
type FilterOptions struct {
	Output     string
	Kind       string
	PathPrefix string
	RunID      string
	TimeStart  string
	TimeEnd    string
}

// BuildFilter converts command-line options into a trace filter.
func BuildFilter(opts FilterOptions) (trace.Filter, error) {
	filter := trace.Filter{
		RunID:      opts.RunID,
		PathPrefix: opts.PathPrefix,
	}

	if opts.Kind != "" {
		k, err := trace.ParseKind(opts.Kind)
		if err != nil {
			return filter, err
		}
		filter.Kind = &k
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// RunFilter writes the events of path matching opts to opts.Output.
func RunFilter(path string, opts FilterOptions, w io.Writer) error {
	filter, err := BuildFilter(opts)
	if err != nil {
		return err
	}

	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	logger, err := trace.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Close()
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	if err := logger.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, opts.Output)
	return nil
}
