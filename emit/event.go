// Package emit provides pluggable observability event emission for a
// search process: logging, in-memory buffering, and OpenTelemetry
// tracing backends behind one small interface, adapted from a
// workflow-engine event emitter to the search domain's own event
// vocabulary.
package emit

// Event is one observability event emitted during a search process's
// lifetime.
type Event struct {
	// RunID identifies the search run that emitted this event.
	RunID string
	// Step is a sequential counter of subtree executor steps, 0 for
	// process-level events (startup, termination).
	Step int
	// NodeIndex identifies which node (by arena index) emitted this
	// event. The coordinator's events are not tied to a single node and
	// leave it at 0.
	NodeIndex int
	// Msg names the event. The coordinator emits incumbent_improved,
	// solution_save_failed and checkpoint_save_failed.
	Msg string
	// Meta carries event-specific structured data, e.g. "quality",
	// "worker", "load".
	Meta map[string]any
}
