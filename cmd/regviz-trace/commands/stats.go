package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/regviz/regviz-go/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[trace.Kind]int
	Runs         map[string]int
	RolesByRule  map[string]int

	// Unresolved counts unresolved supplies per property name.
	Unresolved map[string]int

	TimeRange struct {
		Start time.Time
		End   time.Time
	}
}

// CollectStats reads every event of path.
func CollectStats(path string) (*Stats, error) {
	reader, err := trace.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[trace.Kind]int),
		Runs:         make(map[string]int),
		RolesByRule:  make(map[string]int),
		Unresolved:   make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++
		stats.Runs[event.RunID]++

		switch event.Kind {
		case trace.KindClassified:
			stats.RolesByRule[event.Rule]++
		case trace.KindSupplyUnresolved:
			stats.Unresolved[event.Property]++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
	}

	return stats, nil
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Runs: %d\n", len(stats.Runs))
	if !stats.TimeRange.Start.IsZero() {
		fmt.Fprintf(w, "Time range: %s - %s (%s)\n",
			stats.TimeRange.Start.UTC().Format(time.RFC3339Nano),
			stats.TimeRange.End.UTC().Format(time.RFC3339Nano),
			stats.TimeRange.End.Sub(stats.TimeRange.Start))
	}

	fmt.Fprintln(w, "\nEvents by kind:")
	for _, k := range trace.Kinds() {
		if n := stats.EventsByKind[k]; n > 0 {
			fmt.Fprintf(w, "  %-17s %d\n", k, n)
		}
	}

	if len(stats.RolesByRule) > 0 {
		fmt.Fprintln(w, "\nClassifications by rule:")
		for _, rule := range sortedKeys(stats.RolesByRule) {
			fmt.Fprintf(w, "  %-17s %d\n", rule, stats.RolesByRule[rule])
		}
	}

	if len(stats.Unresolved) > 0 {
		fmt.Fprintln(w, "\nUnresolved supplies:")
		for _, prop := range sortedKeys(stats.Unresolved) {
			fmt.Fprintf(w, "  %-17s %d\n", prop, stats.Unresolved[prop])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
