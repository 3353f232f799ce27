package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogEmitter writes events to a writer, one line per event, either in a
// human-readable key=value form or as JSON Lines.
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to w (os.Stdout if w is
// nil). jsonMode selects JSON Lines output instead of text.
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	if w == nil {
		w = os.Stdout
	}
	return &LogEmitter{writer: w, jsonMode: jsonMode}
}

func (l *LogEmitter) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(l.writer, "{\"error\":\"emit: marshal failed: %v\"}\n", err) //nolint:errcheck // best-effort diagnostic output
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data) //nolint:errcheck // observability sink, not a correctness-critical write
}

func (l *LogEmitter) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] run=%s step=%d node=%d", //nolint:errcheck // observability sink, not a correctness-critical write
		event.Msg, event.RunID, event.Step, event.NodeIndex)
	if len(event.Meta) > 0 {
		if metaJSON, err := json.Marshal(event.Meta); err == nil {
			fmt.Fprintf(l.writer, " meta=%s", metaJSON) //nolint:errcheck // observability sink, not a correctness-critical write
		}
	}
	fmt.Fprintln(l.writer) //nolint:errcheck // observability sink, not a correctness-critical write
}

// EmitBatch writes each event in order.
func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

// Flush is a no-op: LogEmitter writes synchronously with no internal
// buffering of its own.
func (l *LogEmitter) Flush(context.Context) error { return nil }
