package search

import (
	"fmt"

	"github.com/branchbound/parsearch/wire"
)

// Wire tags for the three knowledge kinds a hub/worker handshake moves
// between processes: the client's node representation, its broadcast
// model, and a completed solution. Registering all three under one
// Registry at startup is what lets a received buffer be decoded without
// either side special-casing which kind it is ahead of time.
const (
	NodeWireTag     = "search.node"
	ModelWireTag    = "search.model"
	SolutionWireTag = "search.solution"
)

// nodeProto adapts a Client's Decode method to wire.Decodable so the
// registry can dispatch NODE payloads to it by tag, without the registry
// or its caller ever needing to know the client's concrete node shape.
type nodeProto struct {
	client Client
}

func (p nodeProto) Decode(buf *wire.Buffer) (any, error) {
	return p.client.Decode(buf)
}

// Encode packs m into a wire.Buffer under ModelWireTag.
func (m Model) Encode() *wire.Buffer {
	buf := wire.NewBuffer(ModelWireTag)
	buf.WriteString(m.Tag)
	buf.WriteBytes(m.Payload)
	return buf
}

// DecodeModel reads a Model from buf.
func DecodeModel(buf *wire.Buffer) (Model, error) {
	tag, err := buf.ReadString()
	if err != nil {
		return Model{}, err
	}
	payload, err := buf.ReadBytes()
	if err != nil {
		return Model{}, err
	}
	return Model{Tag: tag, Payload: payload}, nil
}

type modelProto struct{}

func (modelProto) Decode(buf *wire.Buffer) (any, error) { return DecodeModel(buf) }

// Encode packs s into a wire.Buffer under SolutionWireTag.
func (s Solution) Encode() *wire.Buffer {
	buf := wire.NewBuffer(SolutionWireTag)
	buf.WriteFloat64(s.Objective)
	buf.WriteInt32(int32(s.OwnerID)) //nolint:gosec // rank counts fit comfortably in int32
	buf.WriteFloat64Slice(s.Payload)
	return buf
}

// DecodeSolution reads a Solution from buf.
func DecodeSolution(buf *wire.Buffer) (Solution, error) {
	objective, err := buf.ReadFloat64()
	if err != nil {
		return Solution{}, err
	}
	owner, err := buf.ReadInt32()
	if err != nil {
		return Solution{}, err
	}
	payload, err := buf.ReadFloat64Slice()
	if err != nil {
		return Solution{}, err
	}
	return Solution{Objective: objective, OwnerID: int(owner), Payload: payload}, nil
}

type solutionProto struct{}

func (solutionProto) Decode(buf *wire.Buffer) (any, error) { return DecodeSolution(buf) }

// RegisterKinds installs the node/model/solution knowledge kinds into
// registry, bound to client's concrete node decode. A hub and every
// worker each call this once, against their own process-local registry,
// before any NODE/MODEL/INCUMBENT message can be decoded — mirroring
// AlpsKnowledgeBrokerMPI's startup-time prototype registration ahead of
// any MPI traffic.
func RegisterKinds(registry *wire.Registry, client Client) {
	registry.Register(NodeWireTag, nodeProto{client: client})
	registry.Register(ModelWireTag, modelProto{})
	registry.Register(SolutionWireTag, solutionProto{})
}

// DecodeByTag is a small convenience wrapper that decodes buf through
// registry and reports a descriptive error if the result isn't of type T,
// rather than letting a bad type assertion panic deeper in a caller.
func DecodeByTag[T any](registry *wire.Registry, buf *wire.Buffer) (T, error) {
	var zero T
	v, err := registry.Decode(buf)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("search: registry decoded %T, want %T", v, zero)
	}
	return t, nil
}
