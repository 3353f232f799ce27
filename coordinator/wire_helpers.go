package coordinator

import (
	"github.com/branchbound/parsearch/search"
	"github.com/branchbound/parsearch/wire"
)

// encodeNode frames n for a NODE message using the client's own
// identity/description encoding.
func encodeNode(client search.Client, n *search.Node) ([]byte, error) {
	buf := wire.NewBuffer(search.NodeWireTag)
	if err := client.Encode(n, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeNode reconstructs a node from a NODE message's payload, routed
// through registry's NODE prototype rather than calling a client's
// Decode directly, so the receiver never needs to know which concrete
// client produced the payload.
func decodeNode(registry *wire.Registry, payload []byte) (*search.Node, error) {
	buf := wire.NewBufferFromBytes(search.NodeWireTag, payload)
	return search.DecodeByTag[*search.Node](registry, buf)
}
