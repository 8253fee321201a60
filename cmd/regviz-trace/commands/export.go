package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/regviz/regviz-go/pkg/trace"
)

// jsonEvent is the JSONL form of an event with a readable kind.
type jsonEvent struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"runId"`
	Kind      string `json:"kind"`
	Path      string `json:"path,omitempty"`
	Role      string `json:"role,omitempty"`
	Label     string `json:"label,omitempty"`
	Rule      string `json:"rule,omitempty"`
	Property  string `json:"property,omitempty"`
	Target    string `json:"target,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// RunExport exports the trace file to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string, stdout io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func exportJSONL(reader *trace.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(jsonEvent{
			Timestamp: timestamp(event.Timestamp),
			RunID:     event.RunID,
			Kind:      event.Kind.String(),
			Path:      event.Path,
			Role:      event.Role,
			Label:     event.Label,
			Rule:      event.Rule,
			Property:  event.Property,
			Target:    event.Target,
			Detail:    event.Detail,
		}); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *trace.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"timestamp", "run_id", "kind", "path", "role", "label", "rule", "property", "target", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		record := []string{
			timestamp(event.Timestamp),
			event.RunID,
			event.Kind.String(),
			event.Path,
			event.Role,
			event.Label,
			event.Rule,
			event.Property,
			event.Target,
			event.Detail,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
