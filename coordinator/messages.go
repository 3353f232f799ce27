// Package coordinator implements the hub and worker roles that
// distribute subtree work across cooperating processes, balance load,
// propagate incumbent solutions, and detect termination.
package coordinator

import (
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/transport"
	"github.com/branchbound/parsearch/wire"
)

// Tag values match the wire protocol table: every inter-process message
// carries one of these.
const (
	TagModel transport.Tag = iota
	TagParams
	TagNode
	TagFinishInit
	TagIncumbent
	TagIncumbentUpdate
	TagLoadReport
	TagAskLoad
	TagAskDonor
	TagAskPause
	TagAskCont
	TagIdle
	TagTerminate
)

// IncumbentMsg reports a worker's best solution to the hub. It carries
// the solution itself, not just its quality, so the hub's final collect
// phase never needs a second round trip to fetch the winning solution
// from whichever worker found it. The solution is framed through the
// knowledge registry's solution kind, the same decode-by-tag path a NODE
// payload goes through.
type IncumbentMsg struct {
	Solution search.Solution
}

// Encode packs m into a wire.Buffer.
func (m IncumbentMsg) Encode() *wire.Buffer {
	buf := wire.NewBuffer("coordinator.incumbent")
	buf.WriteBytes(m.Solution.Encode().Bytes())
	return buf
}

// DecodeIncumbentMsg reads an IncumbentMsg from buf, decoding its nested
// solution through registry.
func DecodeIncumbentMsg(buf *wire.Buffer, registry *wire.Registry) (IncumbentMsg, error) {
	raw, err := buf.ReadBytes()
	if err != nil {
		return IncumbentMsg{}, err
	}
	sol, err := search.DecodeByTag[search.Solution](registry, wire.NewBufferFromBytes(search.SolutionWireTag, raw))
	if err != nil {
		return IncumbentMsg{}, err
	}
	return IncumbentMsg{Solution: sol}, nil
}

// LoadReportMsg carries one worker's current load estimate.
type LoadReportMsg struct {
	Value float64
}

func (m LoadReportMsg) Encode() *wire.Buffer {
	buf := wire.NewBuffer("coordinator.load_report")
	buf.WriteFloat64(m.Value)
	return buf
}

func DecodeLoadReportMsg(buf *wire.Buffer) (LoadReportMsg, error) {
	v, err := buf.ReadFloat64()
	if err != nil {
		return LoadReportMsg{}, err
	}
	return LoadReportMsg{Value: v}, nil
}

// AskDonorMsg tells an overloaded worker which rank should receive its
// spare work.
type AskDonorMsg struct {
	Receiver int
}

func (m AskDonorMsg) Encode() *wire.Buffer {
	buf := wire.NewBuffer("coordinator.ask_donor")
	buf.WriteInt32(int32(m.Receiver)) //nolint:gosec // rank counts fit comfortably in int32
	return buf
}

func DecodeAskDonorMsg(buf *wire.Buffer) (AskDonorMsg, error) {
	v, err := buf.ReadInt32()
	if err != nil {
		return AskDonorMsg{}, err
	}
	return AskDonorMsg{Receiver: int(v)}, nil
}

// IncumbentUpdateMsg broadcasts a newly improved global incumbent.
type IncumbentUpdateMsg struct {
	Value float64
}

func (m IncumbentUpdateMsg) Encode() *wire.Buffer {
	buf := wire.NewBuffer("coordinator.incumbent_update")
	buf.WriteFloat64(m.Value)
	return buf
}

func DecodeIncumbentUpdateMsg(buf *wire.Buffer) (IncumbentUpdateMsg, error) {
	v, err := buf.ReadFloat64()
	if err != nil {
		return IncumbentUpdateMsg{}, err
	}
	return IncumbentUpdateMsg{Value: v}, nil
}
