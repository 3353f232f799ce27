package coordinator_test

import (
	"testing"

	"github.com/branchbound/parsearch/coordinator"
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/wire"
)

func TestIncumbentMsgRoundTrip(t *testing.T) {
	registry := wire.NewRegistry()
	registry.Register(search.SolutionWireTag, testSolutionProto{})

	want := coordinator.IncumbentMsg{Solution: search.Solution{Objective: -42.5, OwnerID: 3, Payload: []float64{1, 0, 1, 1}}}
	buf := want.Encode()

	got, err := coordinator.DecodeIncumbentMsg(wire.NewBufferFromBytes("", buf.Bytes()), registry)
	if err != nil {
		t.Fatalf("DecodeIncumbentMsg: %v", err)
	}
	if got.Solution.Objective != want.Solution.Objective || got.Solution.OwnerID != want.Solution.OwnerID || len(got.Solution.Payload) != len(want.Solution.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	for i := range want.Solution.Payload {
		if got.Solution.Payload[i] != want.Solution.Payload[i] {
			t.Fatalf("payload[%d] = %v, want %v", i, got.Solution.Payload[i], want.Solution.Payload[i])
		}
	}
}

// testSolutionProto mirrors search.RegisterKinds' own solution
// prototype; duplicated here rather than exported, since only this
// package's own messages (not a client) ever need to register it
// standalone without a node kind alongside it.
type testSolutionProto struct{}

func (testSolutionProto) Decode(buf *wire.Buffer) (any, error) { return search.DecodeSolution(buf) }

func TestLoadReportMsgRoundTrip(t *testing.T) {
	want := coordinator.LoadReportMsg{Value: 12.25}
	got, err := coordinator.DecodeLoadReportMsg(wire.NewBufferFromBytes("", want.Encode().Bytes()))
	if err != nil {
		t.Fatalf("DecodeLoadReportMsg: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestAskDonorMsgRoundTrip(t *testing.T) {
	want := coordinator.AskDonorMsg{Receiver: 2}
	got, err := coordinator.DecodeAskDonorMsg(wire.NewBufferFromBytes("", want.Encode().Bytes()))
	if err != nil {
		t.Fatalf("DecodeAskDonorMsg: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIncumbentUpdateMsgRoundTrip(t *testing.T) {
	want := coordinator.IncumbentUpdateMsg{Value: 5.75}
	got, err := coordinator.DecodeIncumbentUpdateMsg(wire.NewBufferFromBytes("", want.Encode().Bytes()))
	if err != nil {
		t.Fatalf("DecodeIncumbentUpdateMsg: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
