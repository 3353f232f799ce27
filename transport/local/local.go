// Package local provides an in-memory transport.Transport, one buffered
// channel per rank, used by every test and by examples/knapsack so a
// full coordinator run never needs a real socket.
package local

import (
	"context"
	"fmt"

	"github.com/branchbound/parsearch/transport"
)

// defaultQueueDepth bounds each rank's inbox; a coordinator and its
// workers exchange small, bursty message batches, not a steady stream,
// so a modest buffer avoids Send blocking in the common case while
// still surfacing true backpressure if a peer falls far behind.
const defaultQueueDepth = 256

// Network is a shared fabric connecting Size() ranks, each with its own
// inbox channel.
type Network struct {
	inboxes []chan transport.Message
}

// NewNetwork creates a Network with size ranks, 0..size-1.
func NewNetwork(size int) *Network {
	n := &Network{inboxes: make([]chan transport.Message, size)}
	for i := range n.inboxes {
		n.inboxes[i] = make(chan transport.Message, defaultQueueDepth)
	}
	return n
}

// Size returns the number of ranks in the network.
func (n *Network) Size() int { return len(n.inboxes) }

// Rank returns the transport.Transport bound to the given rank.
func (n *Network) Rank(rank int) *Transport {
	return &Transport{net: n, rank: rank}
}

// Transport is one rank's view of a Network.
type Transport struct {
	net  *Network
	rank int
}

func (t *Transport) Send(ctx context.Context, to int, tag transport.Tag, payload []byte) error {
	if to < 0 || to >= len(t.net.inboxes) {
		return fmt.Errorf("transport/local: rank %d out of range", to)
	}
	msg := transport.Message{From: t.rank, Tag: tag, Payload: payload}
	select {
	case t.net.inboxes[to] <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) Recv(ctx context.Context) (transport.Message, error) {
	select {
	case msg := <-t.net.inboxes[t.rank]:
		return msg, nil
	case <-ctx.Done():
		return transport.Message{}, ctx.Err()
	}
}

func (t *Transport) TryRecv() (transport.Message, bool) {
	select {
	case msg := <-t.net.inboxes[t.rank]:
		return msg, true
	default:
		return transport.Message{}, false
	}
}

func (t *Transport) Broadcast(ctx context.Context, tag transport.Tag, payload []byte) error {
	for i := range t.net.inboxes {
		if i == t.rank {
			continue
		}
		if err := t.Send(ctx, i, tag, payload); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) Rank() int { return t.rank }

func (t *Transport) Size() int { return t.net.Size() }

var _ transport.Transport = (*Transport)(nil)
