package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns every event into an immediately-closed OpenTelemetry
// span, named after the event's Msg, with RunID/Step/NodeIndex and all
// Meta entries attached as span attributes. Suited to tracing the
// coordination loop: one span per incumbent improvement or failed save.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter backed by tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("run_id", event.RunID),
		attribute.Int("step", event.Step),
		attribute.Int("node_index", event.NodeIndex),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attribute.String(k, fmt.Sprint(v)))
	}
	if errMsg, ok := event.Meta["error"]; ok {
		msg := fmt.Sprint(errMsg)
		span.SetStatus(codes.Error, msg)
		span.RecordError(fmt.Errorf("%s", msg))
	}
}

func (o *OTelEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		o.Emit(e)
	}
	return nil
}

// Flush is a no-op; span export is handled by the configured
// TracerProvider's own batch span processor.
func (o *OTelEmitter) Flush(context.Context) error { return nil }
