package emit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/branchbound/parsearch/emit"
)

func TestLogEmitterTextMode(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewLogEmitter(&buf, false)
	e.Emit(emit.Event{RunID: "r1", Step: 3, NodeIndex: 5, Msg: "node_process", Meta: map[string]any{"quality": 2.5}})

	line := buf.String()
	if !strings.Contains(line, "node_process") || !strings.Contains(line, "run=r1") || !strings.Contains(line, "node=5") {
		t.Fatalf("unexpected text line: %q", line)
	}
	if !strings.Contains(line, `"quality":2.5`) {
		t.Fatalf("text line missing meta JSON: %q", line)
	}
}

func TestLogEmitterJSONMode(t *testing.T) {
	var buf bytes.Buffer
	e := emit.NewLogEmitter(&buf, true)
	e.Emit(emit.Event{RunID: "r2", Msg: "terminate"})

	var decoded emit.Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded.RunID != "r2" || decoded.Msg != "terminate" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestBufferedEmitterHistoryAndClear(t *testing.T) {
	b := emit.NewBufferedEmitter()
	b.Emit(emit.Event{RunID: "a", Msg: "one"})
	b.Emit(emit.Event{RunID: "a", Msg: "two"})
	b.Emit(emit.Event{RunID: "b", Msg: "other"})

	if got := b.History("a"); len(got) != 2 || got[0].Msg != "one" || got[1].Msg != "two" {
		t.Fatalf("History(a) = %+v", got)
	}
	if got := b.History("b"); len(got) != 1 {
		t.Fatalf("History(b) = %+v", got)
	}

	b.Clear("a")
	if got := b.History("a"); len(got) != 0 {
		t.Fatalf("History(a) after Clear = %+v, want empty", got)
	}
	if got := b.History("b"); len(got) != 1 {
		t.Fatalf("History(b) should survive clearing a different run")
	}
}

func TestBufferedEmitterEmitBatchPreservesOrder(t *testing.T) {
	b := emit.NewBufferedEmitter()
	events := []emit.Event{{Msg: "first"}, {Msg: "second"}, {Msg: "third"}}
	if err := b.EmitBatch(context.Background(), events); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	got := b.History("")
	for i, e := range got {
		if e.Msg != events[i].Msg {
			t.Fatalf("event %d = %q, want %q", i, e.Msg, events[i].Msg)
		}
	}
}

func TestNullEmitterDiscardsEverything(t *testing.T) {
	n := emit.NewNullEmitter()
	n.Emit(emit.Event{Msg: "ignored"})
	if err := n.EmitBatch(context.Background(), []emit.Event{{Msg: "ignored"}}); err != nil {
		t.Fatalf("EmitBatch: %v", err)
	}
	if err := n.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
