package commands

import (
	"fmt"
	"io"

	"github.com/regviz/regviz-go/pkg/trace"
)

// RunView prints the events of path matching filter.
func RunView(path string, filter trace.Filter, w io.Writer) error {
	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	// Header line: timestamp [run:id] KIND path
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [run:%s] %-17s %s\n", ts, shortenRunID(event.RunID), event.Kind, event.Path)

	switch event.Kind {
	case trace.KindClassified:
		fmt.Fprintf(w, "  Role: %s  Label: %s  Rule: %s\n", event.Role, event.Label, event.Rule)
	case trace.KindOwner:
		rule := event.Rule
		if rule == "" {
			rule = "none"
		}
		fmt.Fprintf(w, "  Owner: %s (%s)  Rule: %s\n", event.Label, event.Target, rule)
	case trace.KindSupplyResolved:
		fmt.Fprintf(w, "  %s -> %s (%s)\n", event.Property, event.Label, event.Target)
	case trace.KindSupplyUnresolved:
		fmt.Fprintf(w, "  %s unresolved\n", event.Property)
	case trace.KindDeviceSkipped:
		fmt.Fprintf(w, "  Device: %s\n", event.Label)
	}
	if event.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", event.Detail)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
