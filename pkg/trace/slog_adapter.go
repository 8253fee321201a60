package trace

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as one record. Empty fields are omitted.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind.String()),
	}

	optional := []struct {
		key, value string
	}{
		{"path", event.Path},
		{"role", event.Role},
		{"label", event.Label},
		{"rule", event.Rule},
		{"property", event.Property},
		{"target", event.Target},
		{"detail", event.Detail},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, slog.String(o.key, o.value))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "decision", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
